package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/clipper/models"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "Clipper API base URL")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering the main Korean portals and a script-rendered page.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Naver", "https://n.news.naver.com/mnews/article/001/0014567890"},
	{"Daum", "https://v.daum.net/v/20240315093000123"},
	{"Yonhap", "https://www.yna.co.kr/view/AKR20240315000100001"},
	{"Chosun", "https://www.chosun.com/national/2024/03/15/ABCDEFGHIJ/"},
	{"English", "https://www.bbc.com/news/technology-68000000"},
}

// --- Benchmark result types ---

type runResult struct {
	Run          int      `json:"run"`
	TotalMs      int64    `json:"total_ms"`
	HTTPStatus   int      `json:"http_status"`
	TextChars    int      `json:"text_chars"`
	HasTitle     bool     `json:"has_title"`
	HasDate      bool     `json:"has_date"`
	Images       int      `json:"images"`
	Method       []string `json:"method"`
	MethodsTried []string `json:"methods_tried"`
	Success      bool     `json:"success"`
	Error        string   `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs   float64 `json:"total_ms"`
	TextChars float64 `json:"text_chars"`
	Images    float64 `json:"images"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Clipper Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure clipper is running (e.g. go run ./cmd/clipper)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d chars  via %s\n", rr.TotalMs, rr.TextChars, strings.Join(rr.Method, "+"))
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(models.ExtractRequest{URL: url, Timeout: 60})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/extract", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var er models.ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = er.Success
	rr.HTTPStatus = resp.StatusCode
	rr.TotalMs = er.Timing.TotalMs
	rr.MethodsTried = er.MethodsTried
	if a := er.Article; a != nil {
		rr.TextChars = models.VisibleLen(a.Text)
		rr.HasTitle = a.Title != ""
		rr.HasDate = a.Date != ""
		rr.Images = len(a.Images)
		rr.Method = a.Method
	}
	if er.Error != nil {
		rr.Error = fmt.Sprintf("[%s] %s", er.Error.Code, er.Error.Message)
	}
	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.TextChars += float64(r.TextChars)
		avg.Images += float64(r.Images)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.TextChars /= n
	avg.Images /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tText Chars\tImages\tMethod\n")
	fmt.Fprintf(w, "───\t───────────\t──────────\t──────\t──────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%s\t%.1f\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			formatInt(int(r.Averages.TextChars)),
			r.Averages.Images,
			dominantMethod(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

// dominantMethod returns the most frequent contributing strategy set.
func dominantMethod(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Success {
			counts[strings.Join(r.Method, "+")]++
		}
	}
	best, bestCount := "", 0
	for m, count := range counts {
		if count > bestCount {
			best = m
			bestCount = count
		}
	}
	return best
}

func truncateURL(u string, maxLen int) string {
	if len(u) <= maxLen {
		return u
	}
	return u[:maxLen-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
