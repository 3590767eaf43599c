package cmd

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/distbuild/packplan/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "packplan",
	Short: "Build planner for multi-module package distributions",
	Long: `packplan derives one build target per sub-module and output format (ES module,
CommonJS and type declarations), runs the configured compilers and rewrites the
package manifest's export map to match the generated outputs.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// loadConfig parses packplan.toml and the PACKPLAN_* environment variables.
func loadConfig() (*config.Config, error) {
	cfg, loader := config.Loader()
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newContext builds the logger for this invocation and attaches it to a fresh
// context.
func newContext(cfg *config.Config) (context.Context, *zerolog.Logger) {
	var logger zerolog.Logger
	if cfg.Log.JSON {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(NewConsoleWriter())
	}

	logger = logger.Level(cfg.LogLevel())
	return bundlerContext(&logger), &logger
}
