package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/simhash"
	"golang.org/x/sync/errgroup"
)

var batchFlags struct {
	file        string
	concurrency int
}

var batchCmd = &cobra.Command{
	Use:   "batch [url...]",
	Short: "Extract many articles and print one JSON line per URL",
	Long:  "Extracts every URL given as an argument or listed in --file (one per line,\n# comments allowed). Output lines keep the input order.",
	RunE:  runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.file, "file", "f", "", "File with one URL per line")
	f.IntVar(&batchFlags.concurrency, "concurrency", 5, "URLs extracted at once")
}

type batchLine struct {
	URL          string                `json:"url"`
	Success      bool                  `json:"success"`
	Article      *models.ArticleResult `json:"article,omitempty"`
	MethodsTried []string              `json:"methods_tried"`
	DuplicateOf  *int                  `json:"duplicate_of,omitempty"`
	Error        *models.ErrorDetail   `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	urls := append([]string{}, args...)
	if batchFlags.file != "" {
		fromFile, err := readURLs(batchFlags.file)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given")
	}
	if batchFlags.concurrency < 1 {
		batchFlags.concurrency = 1
	}

	opts := extractOptions(false)
	orch, cleanup, err := buildOrchestrator(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	lines := make([]batchLine, len(urls))
	var g errgroup.Group
	g.SetLimit(batchFlags.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			line := batchLine{URL: u, MethodsTried: []string{}}
			rep, err := orch.Run(cmd.Context(), u, opts)
			if rep != nil && rep.MethodsTried != nil {
				line.MethodsTried = rep.MethodsTried
			}
			if err != nil {
				line.Error = errorDetail(err)
			} else {
				line.Success = true
				line.Article = rep.Article
			}
			lines[i] = line
			return nil
		})
	}
	_ = g.Wait()

	markDuplicates(lines)

	out := cmd.OutOrStdout()
	failed := 0
	for _, l := range lines {
		if !l.Success {
			failed++
		}
		if err := writeJSON(out, l); err != nil {
			return err
		}
	}
	if failed == len(lines) {
		return fmt.Errorf("all %d URLs failed", failed)
	}
	return nil
}

func markDuplicates(lines []batchLine) {
	texts := make([]string, len(lines))
	for i, l := range lines {
		if l.Success && l.Article != nil {
			texts[i] = l.Article.Text
		}
	}
	for i, j := range simhash.DuplicateOf(texts) {
		if j >= 0 {
			lines[i].DuplicateOf = &j
		}
	}
}

func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}
	return urls, nil
}
