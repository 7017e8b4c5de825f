// clipperctl extracts news articles from the command line, running the
// strategy chain in-process.
//
// Usage:
//
//	clipperctl extract <url> [--strategies=a,b] [--browser|--no-browser] [--timeout=30s] [--debug] [--pretty]
//	clipperctl batch <url>... [-f urls.txt] [--concurrency=5]
//	clipperctl strategies
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "clipperctl",
	Short: "Extract news articles with a multi-strategy chain",
	Long:  "clipperctl fetches a news page once, runs trafilatura, goose, selector\npatterns and optionally a headless browser over it, and prints the merged article.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringSliceVar(&chainFlags.strategies, "strategies", nil, "Restrict the chain (trafilatura,goose,pattern,browser)")
	pf.BoolVar(&chainFlags.browser, "browser", false, "Force the browser strategy")
	pf.BoolVar(&chainFlags.noBrowser, "no-browser", false, "Never launch a browser")
	pf.DurationVar(&chainFlags.timeout, "timeout", 0, "Overall budget per URL (default from CLIPPER_DEFAULT_TIMEOUT)")
	pf.BoolVar(&chainFlags.pretty, "pretty", false, "Indent JSON output")
	rootCmd.MarkFlagsMutuallyExclusive("browser", "no-browser")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(strategiesCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
