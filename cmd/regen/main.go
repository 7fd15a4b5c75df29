package main

import (
	"fmt"
	"os"

	"github.com/teranos/regen/cmd/regen/cmd"
	"github.com/teranos/regen/errors"
	"github.com/teranos/regen/logger"
)

func main() {
	err := cmd.RootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
