package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/regen/errors"
	"github.com/teranos/regen/export"
)

var (
	checkFlags sourceFlags
	checkAll   bool
)

// CheckCmd verifies that the output directory matches a fresh export
var CheckCmd = &cobra.Command{
	Use:   "check [name...]",
	Short: "Check that generated modules are up to date",
	Long: `Check exports to a temporary directory and compares the result with the
output directory. Files that differ, are missing or are no longer produced are
listed, and the command fails when anything is out of date.

Examples:
  regen check --all --catalog sim.yaml -o generated`,
	RunE: runCheck,
}

func init() {
	checkFlags.register(CheckCmd)
	CheckCmd.Flags().BoolVar(&checkAll, "all", false, "Check every entity of the source")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := checkFlags.resolvedConfig(cmd)
	if err != nil {
		return err
	}
	existing := cfg.Output.Dir

	tempDir, err := os.MkdirTemp("", "regen-check-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	cfg.Output.Dir = tempDir
	// Formatting is part of what was committed, so it stays on
	summary, err := exportEntities(cmd.Context(), cfg, args, checkAll)
	if err != nil {
		return err
	}
	if err := summary.Err(); err != nil {
		printSummary(summary)
		return errors.Wrap(err, "export failed during check")
	}

	result, err := export.CompareDirectories(tempDir, existing, cfg.Output.Extension)
	if err != nil {
		return errors.Wrap(err, "failed to compare directories")
	}
	if result.UpToDate {
		pterm.FgGreen.Println("✓ Generated modules are up to date")
		return nil
	}

	pterm.FgRed.Println("✗ Generated modules are out of date")
	printFiles("Differ", result.Differ)
	printFiles("Missing", result.Missing)
	printFiles("Stale", result.Stale)
	return errors.WithHint(
		errors.Newf("%s is out of date", existing),
		"Run 'regen export' with the same arguments to update it",
	)
}

func printFiles(label string, files []string) {
	if len(files) == 0 {
		return
	}
	pterm.Printfln("\n%s:", label)
	for _, f := range files {
		pterm.Printfln("  - %s", f)
	}
}
