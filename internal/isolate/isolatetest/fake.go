// Package isolatetest provides a stand-in for the isolate binary that
// runs programs unsandboxed in a temporary directory.
package isolatetest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const script = `#!/bin/sh
root=__ROOT__
id=0 meta= stdin=/dev/null stdout=/dev/null stderr=/dev/null action=
while [ $# -gt 0 ]; do
	case "$1" in
	--box-id=*) id="${1#--box-id=}" ;;
	--meta=*) meta="${1#--meta=}" ;;
	--stdin=*) stdin="${1#--stdin=}" ;;
	--stdout=*) stdout="${1#--stdout=}" ;;
	--stderr=*) stderr="${1#--stderr=}" ;;
	--init) action=init ;;
	--cleanup) action=cleanup ;;
	--run) action=run ;;
	--) shift; break ;;
	esac
	shift
done
echo "$action $id" >> "$root/calls"
case "$action" in
init)
	mkdir -p "$root/$id/box"
	echo "$root/$id"
	;;
cleanup)
	rm -rf "$root/$id"
	;;
run)
	cd "$root/$id/box" || exit 2
	"$@" < "$stdin" > "$stdout" 2> "$stderr"
	rc=$?
	if [ -f "$root/next.meta" ]; then
		cat "$root/next.meta" > "$meta"
		rm -f "$root/next.meta"
		exit 1
	fi
	printf 'time:0.012\ntime-wall:0.020\nmax-rss:1500\nexitcode:%d\n' "$rc" > "$meta"
	if [ "$rc" -ne 0 ]; then
		echo "status:RE" >> "$meta"
		exit 1
	fi
	;;
esac
`

type Fake struct {
	Binary string
	Root   string
}

// New writes the fake binary into a test temp dir.
func New(t *testing.T) *Fake {
	t.Helper()
	root := t.TempDir()
	bin := filepath.Join(root, "isolate")
	body := strings.ReplaceAll(script, "__ROOT__", root)
	require.NoError(t, os.WriteFile(bin, []byte(body), 0o755))
	return &Fake{Binary: bin, Root: root}
}

// NextMeta makes the next run report meta instead of the program's real
// outcome.
func (f *Fake) NextMeta(t *testing.T, meta string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.Root, "next.meta"), []byte(meta), 0o644))
}

// Calls lists the actions the fake received, as "action id".
func (f *Fake) Calls(t *testing.T) []string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(f.Root, "calls"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}
