package cmd

import (
	"github.com/spf13/cobra"

	"github.com/distbuild/packplan/pkg"
	"github.com/distbuild/packplan/pkg/bundler"
	"github.com/distbuild/packplan/pkg/config"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Rewrites the manifest's export map",
	Long: `Merges the generated subpath entries into the package manifest's exports
field and writes the manifest back in place. Entries that weren't generated by
packplan are preserved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		pkg.PrintTask("Updating export map")
		err = updateExports(cfg, planner, plan.Modules)
		if err != nil {
			return err
		}

		pkg.PrintTask("Done")
		return nil
	},
}

// updateExports loads the manifest, merges the generated export entries into
// its export map and persists the result back to the same location.
func updateExports(cfg *config.Config, planner bundler.Planner, modules []string) error {
	manifest, err := bundler.LoadManifest(cfg.Manifest)
	if err != nil {
		return err
	}

	base, err := manifest.Exports()
	if err != nil {
		return err
	}

	updated, err := manifest.WithExports(bundler.BuildExportMap(planner, modules, base))
	if err != nil {
		return err
	}

	return updated.Save(cfg.Manifest)
}

func init() {
	rootCmd.AddCommand(exportsCmd)
}
