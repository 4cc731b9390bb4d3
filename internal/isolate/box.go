package isolate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type Box struct {
	id      int
	root    string
	dir     string
	isolate *Isolate
}

func (b *Box) ID() int { return b.id }

// Dir is the sandbox working directory, visible as /box inside.
func (b *Box) Dir() string { return b.dir }

// Close cleans the box up and frees its id.
func (b *Box) Close() error {
	defer b.isolate.release(b.id)
	if _, err := b.isolate.exec(context.Background(), b.id, "--cleanup"); err != nil {
		return fmt.Errorf("cleanup box %d: %w", b.id, err)
	}
	return nil
}

func (b *Box) path(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("box file %q is not a local path", name)
	}
	return filepath.Join(b.dir, name), nil
}

func (b *Box) AddFile(name string, content []byte, perm os.FileMode) error {
	p, err := b.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, content, perm)
}

// CopyIn copies a host file into the box.
func (b *Box) CopyIn(src, name string, perm os.FileMode) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return b.AddFile(name, content, perm)
}

// CopyOut copies a box file to the host.
func (b *Box) CopyOut(name, dst string, perm os.FileMode) error {
	content, err := b.GetFile(name)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, content, perm)
}

func (b *Box) HasFile(name string) bool {
	p, err := b.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return !errors.Is(err, fs.ErrNotExist)
}

func (b *Box) GetFile(name string) ([]byte, error) {
	p, err := b.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// Command prepares a sandboxed run of argv. Stdio redirections in opts are
// box relative file names.
func (b *Box) Command(argv []string, constraints Constraints, opts RunOptions) *Cmd {
	return &Cmd{box: b, argv: argv, constraints: constraints, opts: opts}
}
