package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Prints the planned build targets",
	Long: `Prints every build target the current plan would execute: the fixed root
triple followed by one types/ESM/CJS triple per declared sub-module.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
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
		targets := planner.Targets(plan.Modules)

		switch format {
		case "text":
			maxNameLen := 0
			for _, target := range targets {
				if len(target.Name()) > maxNameLen {
					maxNameLen = len(target.Name())
				}
			}

			lineFmt := fmt.Sprintf(" * %%-%ds %%s -> %%s\n", maxNameLen+1)
			for _, target := range targets {
				fmt.Printf(lineFmt, target.Name()+":", target.Input, target.Output)
			}
		case "json":
			data, err := json.MarshalIndent(targets, "", "  ")
			if err != nil {
				return eris.Wrap(err, "failed to encode targets")
			}

			fmt.Println(string(data))
		case "yaml":
			data, err := yaml.Marshal(targets)
			if err != nil {
				return eris.Wrap(err, "failed to encode targets")
			}

			os.Stdout.Write(data)
		default:
			return eris.Errorf("unknown format %s (must be text, json or yaml)", format)
		}

		return nil
	},
}

func init() {
	targetsCmd.Flags().StringP("format", "o", "text", "output format (text, json or yaml)")
	rootCmd.AddCommand(targetsCmd)
}
