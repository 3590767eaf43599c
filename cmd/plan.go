package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/distbuild/packplan/pkg/bundler"
	"github.com/distbuild/packplan/pkg/config"
)

func bundlerContext(logger *zerolog.Logger) context.Context {
	return bundler.WithLogger(context.Background(), logger)
}

// parseOptionArgs splits "key=value" arguments from plain arguments, the way
// option overrides are passed on the command line.
func parseOptionArgs(args []string) (map[string]string, []string) {
	options := make(map[string]string)
	rest := make([]string, 0)

	for _, part := range args {
		pos := strings.Index(part, "=")
		if pos > -1 {
			options[part[:pos]] = part[pos+1:]
		} else {
			rest = append(rest, part)
		}
	}

	return options, rest
}

// resolvePlan evaluates the project script if one exists and falls back to
// the static module list from the config otherwise.
func resolvePlan(ctx context.Context, cfg *config.Config, options map[string]string) (*bundler.Plan, error) {
	plan := &bundler.Plan{
		Modules:  cfg.Modules,
		Options:  options,
		Strategy: cfg.CompileStrategy(),
	}

	_, err := os.Stat(cfg.Script)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return plan, nil
		}
		return nil, eris.Wrapf(err, "Failed to check %s", cfg.Script)
	}

	result, err := bundler.RunScript(ctx, cfg.Script, ".", options)
	if err != nil {
		return nil, err
	}

	plan.Modules = result.Modules
	plan.Options = result.Values
	return plan, nil
}

// loadPlan returns the cached plan when present and re-resolves otherwise.
func loadPlan(ctx context.Context, cfg *config.Config) (*bundler.Plan, error) {
	plan, err := bundler.ReadPlanCache(cfg.CacheFile)
	if err == nil {
		return plan, nil
	}
	if !eris.Is(err, os.ErrNotExist) {
		return nil, eris.Wrapf(err, "failed to read %s; try running configure again", cfg.CacheFile)
	}

	return resolvePlan(ctx, cfg, nil)
}
