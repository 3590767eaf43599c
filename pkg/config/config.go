package config

import (
	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/distbuild/packplan/pkg/bundler"
)

// Config describes all configuration options
type Config struct {
	Manifest   string   `default:"package.json" usage:"Path to the package manifest that receives the generated export map"`
	SourceRoot string   `default:"src" usage:"Directory containing the package sources"`
	OutputRoot string   `default:"dist" usage:"Directory that receives the build outputs"`
	Script     string   `default:"bundle.star" usage:"Project script declaring sub-modules (optional)"`
	Modules    []string `usage:"Static sub-module list, used when no project script exists"`
	Strategy   string   `default:"fast" usage:"Compile strategy (fast or checked)"`
	CacheFile  string   `default:".packplan.cache" usage:"Location of the configure cache"`
	Log        struct {
		Level string `default:"info"`
		JSON  bool   `default:"false" usage:"Output JSONND instead of pretty console messages"`
	}
	Tools struct {
		Transpiler string `default:"esbuild" usage:"Single-pass transpiler used by the fast strategy"`
		Compiler   string `default:"tsc" usage:"Type-checking compiler used for declarations and the checked strategy"`
	}
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object
func Loader() (*Config, *aconfig.Loader) {
	cfg := Config{}
	// flag handling is left to cobra
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PACKPLAN",
		SkipFlags: true,
		Files:     []string{"packplan.toml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if _, err := bundler.ParseStrategy(cfg.Strategy); err != nil {
		return eris.Wrap(err, `Invalid value for strategy`)
	}

	_, ok := logLevels[cfg.Log.Level]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	if cfg.Manifest == "" {
		return eris.New(`Invalid value for manifest: must not be empty`)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}

// CompileStrategy converts the .Strategy field. Validate has to pass first.
func (cfg *Config) CompileStrategy() bundler.Strategy {
	strategy, _ := bundler.ParseStrategy(cfg.Strategy)
	return strategy
}

// ToolSet returns the compiler binaries the rendered commands invoke.
func (cfg *Config) ToolSet() bundler.ToolSet {
	return bundler.ToolSet{
		Transpiler: cfg.Tools.Transpiler,
		Compiler:   cfg.Tools.Compiler,
	}
}

// Planner builds the target planner for this configuration.
func (cfg *Config) Planner() bundler.Planner {
	return bundler.Planner{
		SourceRoot: cfg.SourceRoot,
		OutputRoot: cfg.OutputRoot,
		Strategy:   cfg.CompileStrategy(),
	}
}
