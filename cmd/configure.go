package cmd

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/distbuild/packplan/pkg"
	"github.com/distbuild/packplan/pkg/bundler"
)

var configureCmd = &cobra.Command{
	Use:   "configure [option=value...]",
	Short: "Resolves the build plan and caches it",
	Long: `Evaluates the project script (or the static module list if no script exists),
applies the passed option overrides and stores the resolved plan in the
configure cache. Subsequent build runs reuse the cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		options, rest := parseOptionArgs(args)
		if len(rest) > 0 {
			return eris.Errorf("unexpected argument %s, expected option=value pairs", rest[0])
		}

		ctx, _ := newContext(cfg)
		plan, err := resolvePlan(ctx, cfg, options)
		if err != nil {
			return err
		}

		err = bundler.WritePlanCache(cfg.CacheFile, plan)
		if err != nil {
			return eris.Wrapf(err, "failed to write %s", cfg.CacheFile)
		}

		pkg.PrintTask("Configuration done")
		for _, name := range plan.Modules {
			pkg.PrintSubtask(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
