package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/distbuild/packplan/pkg"
	"github.com/distbuild/packplan/pkg/bundler"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Runs all build targets and updates the manifest",
	Long: `Runs the compiler for every planned target in order and, once all outputs
exist, rewrites the package manifest's export map. A failed target or a failed
manifest write aborts the build; there is no partial-success mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		skipExports, err := cmd.Flags().GetBool("skip-exports")
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, _ := newContext(cfg)
		plan, err := loadPlan(ctx, cfg)
		if err != nil {
			return err
		}

		planner := cfg.Planner()
		planner.Strategy = plan.Strategy

		pkg.PrintTask("Checking sources")
		err = planner.CheckSources(".", plan.Modules)
		if err != nil {
			return err
		}

		pkg.PrintTask("Building targets")
		targets := planner.Targets(plan.Modules)
		err = bundler.RunPlan(ctx, ".", targets, bundler.CompilerFor(planner.Strategy), cfg.ToolSet(), bundler.RunOptions{
			DryRun:   dryRun,
			Force:    force,
			Progress: !dryRun && cfg.LogLevel() >= zerolog.InfoLevel,
		})
		if err != nil {
			return err
		}

		// The manifest is only rewritten after every output exists; otherwise
		// it could advertise export paths for files that were never written.
		if !skipExports && !dryRun {
			pkg.PrintTask("Updating export map")
			err = updateExports(cfg, planner, plan.Modules)
			if err != nil {
				return err
			}
		}

		pkg.PrintTask("Done")
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	buildCmd.Flags().BoolP("force", "f", false, "force build; run every target even if its output is up to date")
	buildCmd.Flags().Bool("skip-exports", false, "don't rewrite the manifest after the build")
	rootCmd.AddCommand(buildCmd)
}
