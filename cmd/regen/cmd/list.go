package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/export"
)

var listFlags sourceFlags

// ListCmd shows the entities of a source and how each would be exported
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities with their classified kind",
	Long: `List every entity of the configured source together with the exporter
it is routed to and the module it would be written to.

Examples:
  regen list --catalog sim.yaml
  regen list --go-package ./model`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listFlags.register(ListCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := listFlags.resolvedConfig(cmd)
	if err != nil {
		return err
	}
	src, err := openSource(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	rows := [][]string{{"Name", "Kind", "Module"}}
	for _, ref := range src.Entities() {
		name := src.DeclaredName(ref)
		rows = append(rows, []string{
			name,
			entity.Classify(src, ref).String(),
			export.ModuleName(name),
		})
	}
	if len(rows) == 1 {
		pterm.Warning.Println("No entities found")
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
