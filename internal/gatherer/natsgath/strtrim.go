package natsgath

import (
	"strings"
)

// trimStrToRect keeps at most maxHeight lines of at most maxWidth bytes,
// marking cut text with "[...]".
func trimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	cut := len(lines) > maxHeight
	if cut {
		lines = lines[:maxHeight]
	}
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if len(line) > maxWidth {
			sb.WriteString(line[:maxWidth])
			sb.WriteString("[...]")
		} else {
			sb.WriteString(line)
		}
	}
	if cut {
		sb.WriteString("\n[...]")
	}
	return sb.String()
}
