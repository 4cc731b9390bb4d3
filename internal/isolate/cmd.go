package isolate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

type RunOptions struct {
	Stdin  string
	Stdout string
	Stderr string
	Env    []string
}

type Cmd struct {
	box         *Box
	argv        []string
	constraints Constraints
	opts        RunOptions
}

func (c *Cmd) args(metaPath string) []string {
	i := c.box.isolate
	args := i.baseArgs(c.box.id)
	args = append(args, "--meta="+metaPath, "--env=HOME=/box")
	for _, env := range c.opts.Env {
		args = append(args, "--env="+env)
	}
	args = append(args, c.constraints.Args(i.cgroups)...)
	if c.opts.Stdin != "" {
		args = append(args, "--stdin="+c.opts.Stdin)
	}
	if c.opts.Stdout != "" {
		args = append(args, "--stdout="+c.opts.Stdout)
	}
	if c.opts.Stderr != "" {
		args = append(args, "--stderr="+c.opts.Stderr)
	}
	args = append(args, "--run", "--")
	return append(args, c.argv...)
}

// Run blocks until the sandboxed program ends and returns what isolate
// recorded about it. A program failure is reported through Metrics;
// the error is set only when isolate itself could not be run.
func (c *Cmd) Run(ctx context.Context) (*Metrics, error) {
	meta, err := os.CreateTemp("", "isolate.*.meta")
	if err != nil {
		return nil, err
	}
	metaPath := meta.Name()
	meta.Close()
	defer os.Remove(metaPath)

	i := c.box.isolate
	cmd := exec.CommandContext(ctx, i.binary, c.args(metaPath)...)
	i.logger.Debug("isolate run", "box", c.box.id, "argv", c.argv)

	// isolate exits with 1 when the program fails; the meta file tells why.
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("start isolate: %w", err)
		}
	}

	content, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("read meta file: %w", err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("isolate wrote no meta file: %s", out)
	}
	return ParseMeta(content)
}
