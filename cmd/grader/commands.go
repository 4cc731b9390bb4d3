package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/batch"
	"github.com/programme-lv/grader/internal/behave"
	"github.com/programme-lv/grader/internal/config"
	"github.com/programme-lv/grader/internal/fsjudge"
	"github.com/programme-lv/grader/internal/gatherer/termgath"
	"github.com/programme-lv/grader/internal/judge"
	"github.com/urfave/cli/v3"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func judgeCommand() *cli.Command {
	return &cli.Command{
		Name:      "judge",
		Usage:     "judge one submission descriptor and print the result as JSON",
		ArgsUsage: "<submission.toml>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem-dir", Aliases: []string{"p"}, Required: true, Usage: "directory with <id>.in and <id>.ans"},
			&cli.StringFlag{Name: "comparator", Value: "lines", Usage: "exact, tokens, lines, testlib:<checker> or testlib-src:<checker.cpp>"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "no progress output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("expected exactly one submission descriptor", 2)
			}
			sub, err := loadSubmission(cmd.Args().First(), cmd.String("problem-dir"))
			if err != nil {
				return err
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			cmp, err := a.comparator(ctx, cmd.String("comparator"))
			if err != nil {
				return err
			}

			if sub.SubmitID == "" {
				sub.SubmitID = uuid.NewString()
			}
			if !filepath.IsLocal(sub.SubmitID) {
				return fmt.Errorf("submit id %q is not a plain directory name", sub.SubmitID)
			}
			hooks, err := fsjudge.New(fsjudge.Config{
				ProblemDir:       cmd.String("problem-dir"),
				WorkDir:          filepath.Join(a.cfg.Work.Dir, sub.SubmitID),
				Comparator:       cmp,
				CompileArtifacts: []string{sub.ExePath, sub.ErrLogPath},
				Logger:           a.logger,
			})
			if err != nil {
				return err
			}

			var extra []judge.Gatherer
			if !cmd.Bool("quiet") {
				extra = append(extra, termgath.New(os.Stderr))
			}
			j, err := judge.New(a.backend, hooks, a.compilers,
				judge.WithLogger(a.logger), judge.WithGatherer(a.gatherer(extra...)))
			if err != nil {
				return err
			}

			res, err := j.Run(ctx, sub)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "judge several submissions of one problem concurrently",
		ArgsUsage: "<submission.toml>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem-dir", Aliases: []string{"p"}, Required: true},
			&cli.StringFlag{Name: "comparator", Value: "lines"},
			&cli.IntFlag{Name: "concurrency", Aliases: []string{"j"}, Usage: "overrides the configured concurrency"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return cli.Exit("expected at least one submission descriptor", 2)
			}
			problemDir := cmd.String("problem-dir")
			subs := make([]api.Submission, 0, cmd.Args().Len())
			for _, path := range cmd.Args().Slice() {
				sub, err := loadSubmission(path, problemDir)
				if err != nil {
					return err
				}
				subs = append(subs, sub)
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			cmp, err := a.comparator(ctx, cmd.String("comparator"))
			if err != nil {
				return err
			}
			jobs := make([]batch.Job, 0, len(subs))
			for _, sub := range subs {
				jobs = append(jobs, batch.Job{Submission: sub, ProblemDir: problemDir, Comparator: cmp})
			}

			concurrency := a.cfg.Work.Concurrency
			if n := cmd.Int("concurrency"); n > 0 {
				concurrency = int(n)
			}
			runner := &batch.Runner{
				Backend:     a.backend,
				Compilers:   a.compilers,
				WorkDir:     a.cfg.Work.Dir,
				Concurrency: concurrency,
				Logger:      a.logger,
				Gatherer:    a.perSubmissionGatherer(),
			}
			outcomes, err := runner.Run(ctx, jobs)
			if err != nil {
				return err
			}

			type entry struct {
				Result *api.JudgeResult `json:"result,omitempty"`
				Error  string           `json:"error,omitempty"`
			}
			report := make(map[string]entry, len(outcomes))
			failed := 0
			for id, o := range outcomes {
				if o.Err != nil {
					failed++
					report[id] = entry{Error: o.Err.Error()}
					continue
				}
				res := o.Result
				report[id] = entry{Result: &res}
			}
			if err := printJSON(report); err != nil {
				return err
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d submissions failed", failed, len(outcomes)), 1)
			}
			return nil
		},
	}
}

func behaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "behave",
		Usage:     "run end-to-end scenarios from a TOML file",
		ArgsUsage: "<scenarios.toml>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("expected exactly one scenario file", 2)
			}
			cases, err := behave.Parse(cmd.Args().First())
			if err != nil {
				return err
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			dir, err := os.MkdirTemp("", "grader-behave-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)

			runner := &batch.Runner{
				Backend:     a.backend,
				Compilers:   a.compilers,
				WorkDir:     filepath.Join(dir, "work"),
				Concurrency: a.cfg.Work.Concurrency,
				Logger:      a.logger,
			}
			reports, err := behave.Run(ctx, runner, cases, dir)
			if err != nil {
				return err
			}

			pass, fail := color.New(color.FgGreen), color.New(color.FgRed)
			failed := 0
			for _, r := range reports {
				if r.Passed() {
					pass.Printf("PASS ")
					fmt.Println(r.Case.Name)
					continue
				}
				failed++
				fail.Printf("FAIL ")
				fmt.Println(r.Case.Name)
				for _, line := range strings.Split(r.Err.Error(), "\n") {
					fmt.Println("     " + line)
				}
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d scenarios failed", failed, len(reports)), 1)
			}
			return nil
		},
	}
}

func compilersCommand() *cli.Command {
	return &cli.Command{
		Name:  "compilers",
		Usage: "list the compiler registry",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"), cmd.String("env-file"))
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOMMAND")
			for _, c := range reg.List() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, strings.Join(c.CompileCmd, " "))
			}
			return w.Flush()
		},
	}
}
