// Package behave runs end-to-end judging scenarios described in TOML.
package behave

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/batch"
	"github.com/programme-lv/grader/internal/checkers"
)

// SpecTest is a single test case in the behaviour file
type SpecTest struct {
	In  string `toml:"in"`
	Ans string `toml:"ans"`
}

// SpecRequest represents a request block inside a scenario entry
type SpecRequest struct {
	Compiler   string     `toml:"compiler"`
	Code       string     `toml:"code"`
	Tests      []SpecTest `toml:"tests"`
	TimeLimit  int        `toml:"time_limit"`
	MemLimit   int        `toml:"mem_limit"`
	Comparator string     `toml:"comparator"`
}

// SpecExpect describes the expected status and per-sample verdicts
type SpecExpect struct {
	Status          api.CompileStatus `toml:"status"`
	Verdicts        []api.Verdict     `toml:"verdicts"`
	MessageContains string            `toml:"message_contains"`
}

// specSuite maps to [[scenarios]] entries. The request is written as an array-of-table,
// so we model it as a slice and use the first element.
type specSuite struct {
	Description string        `toml:"description"`
	RequestAOT  []SpecRequest `toml:"request"`
	Expect      SpecExpect    `toml:"expect"`
}

type specRoot struct {
	Suites []specSuite `toml:"scenarios"`
}

// Case is a runnable scenario converted from TOML
type Case struct {
	Name    string
	Request SpecRequest
	Expect  SpecExpect
}

// Parse reads a behaviour TOML file
func Parse(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read behaviour file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cases := make([]Case, 0, len(root.Suites))
	for i, suite := range root.Suites {
		if len(suite.RequestAOT) == 0 {
			return nil, fmt.Errorf("scenario %d (%s) is missing request block", i, suite.Description)
		}
		req := suite.RequestAOT[0]
		if req.Compiler == "" {
			return nil, fmt.Errorf("scenario %d (%s) has no compiler", i, suite.Description)
		}

		// Apply limits with sensible defaults if not provided
		if req.TimeLimit == 0 {
			req.TimeLimit = 1
		}
		if req.MemLimit == 0 {
			req.MemLimit = 256 * 1024
		}
		if suite.Expect.Status == "" {
			suite.Expect.Status = api.CompileOK
		}

		cases = append(cases, Case{Name: suite.Description, Request: req, Expect: suite.Expect})
	}
	return cases, nil
}

func sourceExt(compiler string) string {
	switch compiler {
	case "gcc", "clang":
		return ".c"
	case "g++", "clang++":
		return ".cpp"
	}
	return ".src"
}

// Materialize writes the scenario's code and tests under dir and returns
// a batch job for it.
func (c Case) Materialize(dir string) (batch.Job, error) {
	cmp, err := checkers.Parse(c.Request.Comparator)
	if err != nil {
		return batch.Job{}, err
	}

	id := uuid.NewString()
	root := filepath.Join(dir, id)
	testDir := filepath.Join(root, "tests")
	if err := os.MkdirAll(testDir, 0o755); err != nil {
		return batch.Job{}, err
	}

	src := filepath.Join(root, "main"+sourceExt(c.Request.Compiler))
	if err := os.WriteFile(src, []byte(c.Request.Code), 0o644); err != nil {
		return batch.Job{}, err
	}
	for i, t := range c.Request.Tests {
		name := filepath.Join(testDir, strconv.Itoa(i))
		if err := os.WriteFile(name+".in", []byte(t.In), 0o644); err != nil {
			return batch.Job{}, err
		}
		if err := os.WriteFile(name+".ans", []byte(t.Ans), 0o644); err != nil {
			return batch.Job{}, err
		}
	}

	return batch.Job{
		Submission: api.Submission{
			ProblemID:   c.Name,
			SubmitID:    id,
			Compiler:    c.Request.Compiler,
			SourcePath:  src,
			ExePath:     filepath.Join(root, "main"),
			ErrLogPath:  filepath.Join(root, "compile.log"),
			TimeLimit:   c.Request.TimeLimit,
			MemLimit:    c.Request.MemLimit,
			SampleCount: len(c.Request.Tests),
		},
		ProblemDir: testDir,
		Comparator: cmp,
	}, nil
}

// Check compares a result with the expectation and lists every mismatch.
func (c Case) Check(res api.JudgeResult) error {
	var errs []error
	if res.Status != c.Expect.Status {
		errs = append(errs, fmt.Errorf("status: expected %s, got %s", c.Expect.Status, res.Status))
	}
	if c.Expect.MessageContains != "" && !strings.Contains(res.Message, c.Expect.MessageContains) {
		errs = append(errs, fmt.Errorf("message: expected to contain %q, got %q", c.Expect.MessageContains, res.Message))
	}
	if c.Expect.Verdicts != nil {
		got := res.Verdicts()
		if len(got) != len(c.Expect.Verdicts) {
			errs = append(errs, fmt.Errorf("verdicts: expected %d, got %d", len(c.Expect.Verdicts), len(got)))
		} else {
			for i := range got {
				if got[i] != c.Expect.Verdicts[i] {
					errs = append(errs, fmt.Errorf("sample %d: expected %s, got %s", i, c.Expect.Verdicts[i], got[i]))
				}
			}
		}
	}
	return errors.Join(errs...)
}
