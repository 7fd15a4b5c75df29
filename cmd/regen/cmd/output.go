package cmd

import (
	"github.com/pterm/pterm"

	"github.com/teranos/regen/export"
)

// printSummary shows what a run wrote, skipped and failed.
func printSummary(s *export.Summary) {
	for _, o := range s.Written {
		pterm.FgGreen.Printfln("✓ Generated %s", o.Path)
		for _, w := range o.Warnings {
			pterm.FgYellow.Printfln("  ⚠ %s: %v", o.Entity, w)
		}
	}
	for _, o := range s.Skipped {
		pterm.FgYellow.Printfln("⚠ Skipped %s: %v", o.Entity, o.Err)
	}
	for _, o := range s.Failed {
		pterm.FgRed.Printfln("✗ Failed %s: %v", o.Entity, o.Err)
	}

	pterm.Println()
	pterm.Info.Printfln("%d written, %d skipped, %d failed (run %s)",
		len(s.Written), len(s.Skipped), len(s.Failed), s.RunID)
}
