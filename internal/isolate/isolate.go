// Package isolate drives the isolate(1) sandbox through its command line.
package isolate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

var ErrNoFreeBox = errors.New("no free isolate box")

type Config struct {
	// Binary defaults to "isolate" looked up in PATH.
	Binary string
	// Cgroups enables --cg and cg-mem based memory accounting.
	Cgroups bool
	// MaxBoxes bounds the ids handed out, 0..MaxBoxes-1. Defaults to 1000.
	MaxBoxes int
	Logger   *slog.Logger
}

// Isolate hands out sandbox boxes. Box ids are unique per instance, so one
// instance should own the sandbox on a machine.
type Isolate struct {
	binary   string
	cgroups  bool
	maxBoxes int
	logger   *slog.Logger

	mu    sync.Mutex
	inUse mapset.Set[int]
}

func New(cfg Config) *Isolate {
	if cfg.Binary == "" {
		cfg.Binary = "isolate"
	}
	if cfg.MaxBoxes <= 0 {
		cfg.MaxBoxes = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Isolate{
		binary:   cfg.Binary,
		cgroups:  cfg.Cgroups,
		maxBoxes: cfg.MaxBoxes,
		logger:   cfg.Logger,
		inUse:    mapset.NewThreadUnsafeSet[int](),
	}
}

// NewBox reserves the lowest free id, resets it and initialises the box.
func (i *Isolate) NewBox(ctx context.Context) (*Box, error) {
	id, err := i.reserve()
	if err != nil {
		return nil, err
	}

	if _, err := i.exec(ctx, id, "--cleanup"); err != nil {
		i.release(id)
		return nil, fmt.Errorf("cleanup box %d: %w", id, err)
	}
	out, err := i.exec(ctx, id, "--init")
	if err != nil {
		i.release(id)
		return nil, fmt.Errorf("init box %d: %w", id, err)
	}

	root := strings.TrimSpace(out)
	i.logger.Debug("isolate box created", "box", id, "path", root)
	return &Box{id: id, root: root, dir: filepath.Join(root, "box"), isolate: i}, nil
}

func (i *Isolate) reserve() (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for id := 0; id < i.maxBoxes; id++ {
		if !i.inUse.Contains(id) {
			i.inUse.Add(id)
			return id, nil
		}
	}
	return -1, ErrNoFreeBox
}

func (i *Isolate) release(id int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.inUse.Remove(id)
}

// InUse reports how many boxes are currently reserved.
func (i *Isolate) InUse() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.inUse.Cardinality()
}

func (i *Isolate) baseArgs(id int) []string {
	args := make([]string, 0, 2)
	if i.cgroups {
		args = append(args, "--cg")
	}
	return append(args, "--box-id="+strconv.Itoa(id))
}

func (i *Isolate) exec(ctx context.Context, id int, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, i.binary, append(i.baseArgs(id), args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", i.binary, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
