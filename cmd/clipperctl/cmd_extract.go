package main

import (
	"github.com/spf13/cobra"
	"github.com/use-agent/clipper/models"
)

var extractFlags struct {
	debug bool
}

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract one article and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractFlags.debug, "debug", false, "Include per-strategy attempts")
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts := extractOptions(extractFlags.debug)
	orch, cleanup, err := buildOrchestrator(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := orch.Run(cmd.Context(), args[0], opts)

	resp := models.ExtractResponse{MethodsTried: []string{}}
	if rep != nil {
		if rep.MethodsTried != nil {
			resp.MethodsTried = rep.MethodsTried
		}
		if opts.Debug {
			for _, a := range rep.Attempts {
				resp.Attempts = append(resp.Attempts, a.Info())
			}
		}
	}
	if err != nil {
		resp.Error = errorDetail(err)
		if werr := writeJSON(cmd.OutOrStdout(), resp); werr != nil {
			return werr
		}
		return err
	}

	resp.Success = true
	resp.Article = rep.Article
	return writeJSON(cmd.OutOrStdout(), resp)
}
