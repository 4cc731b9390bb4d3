// Package config loads grader settings from a TOML file, an optional .env
// file and GRADER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/grader/internal/compilers"
	"github.com/programme-lv/grader/internal/xdg"
)

const AppName = "grader"

// Backend kinds.
const (
	BackendNative  = "native"
	BackendProcess = "process"
	BackendIsolate = "isolate"
)

type Config struct {
	Backend   BackendConfig    `toml:"backend"`
	Compilers []CompilerConfig `toml:"compilers"`
	Work      WorkConfig       `toml:"work"`
	NATS      NATSConfig       `toml:"nats"`
	Checkers  CheckersConfig   `toml:"checkers"`
}

type BackendConfig struct {
	Kind string `toml:"kind"`
	// JudgePath is the judge binary of the process backend.
	JudgePath string `toml:"judge_path"`
	// LibraryPath is the engine library of the native backend.
	LibraryPath    string `toml:"library_path"`
	IsolateBinary  string `toml:"isolate_binary"`
	Cgroups        bool   `toml:"cgroups"`
	OutputLimitKiB int    `toml:"output_limit_kib"`
}

type CompilerConfig struct {
	Name    string   `toml:"name"`
	ID      int      `toml:"id"`
	Command []string `toml:"command"`
}

type WorkConfig struct {
	Dir         string `toml:"dir"`
	Concurrency int    `toml:"concurrency"`
}

// CheckersConfig is needed to build testlib checkers from source. An empty
// TestlibHeader disables it.
type CheckersConfig struct {
	TestlibHeader string `toml:"testlib_header"`
	CacheDir      string `toml:"cache_dir"`
}

type NATSConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
}

func Default() *Config {
	return &Config{
		Backend: BackendConfig{Kind: BackendProcess, JudgePath: "judge"},
		Work: WorkConfig{
			Dir:         xdg.New().AppCacheDir(AppName),
			Concurrency: 1,
		},
		NATS:     NATSConfig{Subject: "grader.events"},
		Checkers: CheckersConfig{CacheDir: filepath.Join(xdg.New().AppCacheDir(AppName), "checkers")},
	}
}

// Load reads path if it is not empty, then envFile if it exists, then
// applies the environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"GRADER_BACKEND":      &c.Backend.Kind,
		"GRADER_JUDGE_PATH":   &c.Backend.JudgePath,
		"GRADER_WORK_DIR":     &c.Work.Dir,
		"GRADER_NATS_URL":     &c.NATS.URL,
		"GRADER_NATS_SUBJECT": &c.NATS.Subject,
		"GRADER_TESTLIB_H":    &c.Checkers.TestlibHeader,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("GRADER_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRADER_CONCURRENCY: %w", err)
		}
		c.Work.Concurrency = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case BackendNative, BackendIsolate:
	case BackendProcess:
		if c.Backend.JudgePath == "" {
			return errors.New("process backend needs a judge path")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend.Kind)
	}
	if c.Work.Dir == "" {
		return errors.New("work dir is empty")
	}
	if c.Work.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Work.Concurrency)
	}
	return nil
}

// Registry builds the compiler registry from the defaults and the
// [[compilers]] entries.
func (c *Config) Registry() (*compilers.Registry, error) {
	extra := make([]compilers.Compiler, 0, len(c.Compilers))
	for _, cc := range c.Compilers {
		extra = append(extra, compilers.Compiler{Name: cc.Name, ID: cc.ID, CompileCmd: cc.Command})
	}
	return compilers.New(extra...)
}
