// Package cmd holds the regen command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/teranos/regen/config"
	"github.com/teranos/regen/errors"
	"github.com/teranos/regen/logger"
)

var (
	configPath string
	jsonOutput bool
)

// RootCmd is the regen entry point
var RootCmd = &cobra.Command{
	Use:   "regen",
	Short: "Regenerate loadable source modules from live entities",
	Long: `regen writes one source module per entity, plus every sibling entity it
refers to, into a flat output directory.

Entities come from a catalog manifest (YAML, TOML or JSON) or from the exported
structs of a Go package.

Configuration sources (in order of precedence):
  1. Command line flags
  2. Environment variables (REGEN_* prefix)
  3. Project config (./regen.toml, searched upward)
  4. User config (~/.regen/regen.toml)
  5. Default values

Examples:
  regen export FlappyHybridSim --catalog sim.yaml
  regen export --all --go-package ./model -o generated
  regen list --catalog sim.yaml
  regen check --catalog sim.yaml -o generated
  regen watch simulate --catalog sim.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.InitializeWithVerbosity(jsonOutput || cfg.Log.JSON, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	RootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Machine-readable output (JSON logs)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: regen.toml search)")

	RootCmd.AddCommand(ExportCmd)
	RootCmd.AddCommand(ListCmd)
	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(WatchCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(VersionCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}
