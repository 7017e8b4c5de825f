package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/extractor"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the strategy chain in execution order",
	RunE:  runStrategies,
}

func runStrategies(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	out := cmd.OutOrStdout()
	for _, name := range extractor.New(nil, cfg.Extract).Strategies() {
		fmt.Fprintln(out, name)
	}
	if cfg.Browser.Enabled {
		fmt.Fprintln(out, extractor.StrategyBrowser+" (launched on demand)")
	}
	return nil
}
