package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/regen/config"
	"github.com/teranos/regen/errors"
	"github.com/teranos/regen/logger"
)

var (
	watchFlags    sourceFlags
	watchAll      bool
	watchDebounce = config.DefaultDebounce
)

// WatchCmd re-exports whenever the catalog file changes
var WatchCmd = &cobra.Command{
	Use:   "watch [name...]",
	Short: "Re-export when the catalog changes",
	Long: `Watch exports once, then re-exports every time the catalog file is saved.
If the first export cannot load the catalog, watch exits with that error. Later
load failures are reported and the previous output is kept.

Examples:
  regen watch simulate --catalog sim.yaml -o generated`,
	RunE: runWatch,
}

func init() {
	watchFlags.register(WatchCmd)
	WatchCmd.Flags().BoolVar(&watchAll, "all", false, "Export every entity of the catalog")
	WatchCmd.Flags().DurationVar(&watchDebounce, "debounce", config.DefaultDebounce, "Quiet period before re-exporting")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := watchFlags.resolvedConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Catalog.Path == "" {
		return errors.WithHint(
			errors.New("watch needs a catalog file"),
			"Go packages are not watched; pass --catalog",
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reexport := func(string) error {
		summary, err := exportEntities(ctx, cfg, args, watchAll)
		if err != nil {
			pterm.FgRed.Printfln("✗ %v", err)
			return err
		}
		printSummary(summary)
		return nil
	}

	summary, err := exportEntities(ctx, cfg, args, watchAll)
	if err != nil {
		return errors.Wrap(err, "initial export failed")
	}
	printSummary(summary)

	w, err := config.NewWatcher(watchDebounce, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	w.OnChange(reexport)

	pterm.Info.Printfln("Watching %s (Ctrl-C to stop)", cfg.Catalog.Path)
	logger.Infow("Watching catalog", logger.FieldCatalog, cfg.Catalog.Path)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
