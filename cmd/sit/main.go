// Package main is the entry point for the Sleep Health Insight TUI.
// Without a subcommand it runs the Bubble Tea program.
package main

import (
	"context"
	"os"

	"github.com/j-veylop/sleep-insight-tui/internal/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}
