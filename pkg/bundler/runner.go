package bundler

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// RunOptions controls plan execution.
type RunOptions struct {
	// DryRun only logs the commands without executing anything.
	DryRun bool
	// Force runs every target even if its output is newer than its input.
	Force bool
	// Progress renders a progress bar across the target list.
	Progress bool
}

// RunPlan executes every target in order and stops at the first failure.
// Targets whose output is already newer than their input are skipped unless
// forced. The caller is responsible for writing the manifest strictly after
// this returns successfully.
func RunPlan(ctx context.Context, projectRoot string, targets []BuildTarget, comp Compiler, tools ToolSet, opts RunOptions) error {
	var bar *progressbar.ProgressBar
	if opts.Progress && !opts.DryRun {
		bar = progressbar.Default(int64(len(targets)), "building")
	}

	parser := syntax.NewParser()
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !opts.Force {
			current, err := upToDate(projectRoot, target)
			if err != nil {
				return err
			}
			if current {
				log(ctx).Info().
					Str("target", target.Name()).
					Msg("nothing to do (output is newer than input)")
				advance(bar)
				continue
			}
		}

		cmdLine := comp.CommandLine(tools, target)
		log(ctx).Info().
			Str("target", target.Name()).
			Bool("command", true).
			Msg(cmdLine)

		if opts.DryRun {
			continue
		}

		if err := runCommand(ctx, projectRoot, parser, target, cmdLine); err != nil {
			return err
		}
		advance(bar)
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return nil
}

func advance(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}

func runCommand(ctx context.Context, projectRoot string, parser *syntax.Parser, target BuildTarget, cmdLine string) error {
	script, err := parser.Parse(strings.NewReader(cmdLine), target.Name())
	if err != nil {
		return eris.Wrapf(err, "failed to parse command for target %s", target.Name())
	}

	runner, err := interp.New(
		interp.Dir(projectRoot),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, os.Stdout, os.Stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "failed to initialize runner")
	}

	for _, stmt := range script.Stmts {
		if err := runner.Run(ctx, stmt); err != nil {
			return CompileFailed{Target: target, Err: err}
		}
		if runner.Exited() {
			break
		}
	}
	return nil
}

// upToDate reports whether the target's output is newer than its input. A
// missing output always means the target has to run.
func upToDate(projectRoot string, target BuildTarget) (bool, error) {
	outInfo, err := os.Stat(filepath.Join(projectRoot, filepath.FromSlash(target.Output)))
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, eris.Wrapf(err, "Failed to check output %s", target.Output)
	}

	inInfo, err := os.Stat(filepath.Join(projectRoot, filepath.FromSlash(target.Input)))
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, eris.Wrapf(err, "Failed to check input %s", target.Input)
	}

	return outInfo.ModTime().After(inInfo.ModTime()), nil
}
