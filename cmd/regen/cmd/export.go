package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/regen/config"
	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
	"github.com/teranos/regen/export"
	"github.com/teranos/regen/logger"
)

var (
	exportFlags  sourceFlags
	exportAll    bool
	exportReport string
)

// ExportCmd writes the named entities and everything they reference
var ExportCmd = &cobra.Command{
	Use:   "export [name...]",
	Short: "Export entities and their sibling references",
	Long: `Export writes one module per entity into the output directory, then
exports every sibling entity those modules import, each exactly once.

Entities that cannot be exported are reported and the rest of the run
continues. The command exits non-zero when any entity failed.

Examples:
  regen export FlappyHybridSim --catalog sim.yaml
  regen export simulate State -c sim.yaml -o generated --format-command "black -q"
  regen export --all --go-package ./model --report generated/report.toml`,
	RunE: runExport,
}

func init() {
	exportFlags.register(ExportCmd)
	ExportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every entity of the source")
	ExportCmd.Flags().StringVar(&exportReport, "report", "", "Write a TOML run report to this path")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := exportFlags.resolvedConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("report") {
		cfg.Report.Path = exportReport
	}

	summary, err := exportEntities(cmd.Context(), cfg, args, exportAll)
	if err != nil {
		return err
	}
	printSummary(summary)

	if cfg.Report.Path != "" {
		if err := summary.WriteReport(cfg.Report.Path); err != nil {
			return err
		}
		pterm.Info.Printfln("Report written to %s", cfg.Report.Path)
	}
	return summary.Err()
}

// exportEntities opens the configured source and exports names from it.
func exportEntities(ctx context.Context, cfg *config.Config, names []string, all bool) (*export.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	refs, err := selectEntities(src, names, all)
	if err != nil {
		return nil, err
	}
	return runExporter(ctx, src, cfg.ExportOptions(), refs)
}

func runExporter(ctx context.Context, in entity.Introspector, opts export.Options, refs []entity.Ref) (*export.Summary, error) {
	e, err := export.New(in, opts, export.WithLogger(logger.Logger))
	if err != nil {
		return nil, err
	}
	summary, err := e.ExportAll(ctx, refs)
	if err != nil {
		return summary, errors.Wrap(err, "export interrupted")
	}
	return summary, nil
}
