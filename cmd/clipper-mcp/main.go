package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/clipper/models"
)

func main() {
	apiURL := os.Getenv("CLIPPER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiURL = strings.TrimRight(apiURL, "/")

	s := server.NewMCPServer(
		"clipper",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_article",
		mcp.WithDescription("Extract a news article from a URL. Returns the title, body text, publication date, images and videos. Tries several extraction strategies and falls back to a headless browser for script-rendered pages."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the article"),
		),
		mcp.WithArray("strategies",
			mcp.Description("Restrict the chain to these strategies: 'trafilatura', 'goose', 'pattern', 'browser'"),
		),
		mcp.WithBoolean("force_browser",
			mcp.Description("Force (true) or forbid (false) the browser strategy; omit for the server default"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Overall budget in seconds (default: 30, range: 5-120)"),
		),
	)
	s.AddTool(extractTool, handleExtract(apiURL))

	batchTool := mcp.NewTool("batch_extract",
		mcp.WithDescription("Extract up to 50 news articles at once. Results keep the order of the given URLs; syndicated copies point at the first matching result."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of article URLs"),
		),
		mcp.WithNumber("concurrency",
			mcp.Description("Number of URLs extracted at once (default: 5, range: 1-10)"),
		),
	)
	s.AddTool(batchTool, handleBatch(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Clipper API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleExtract(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 150 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		req := models.ExtractRequest{
			URL:        url,
			Strategies: request.GetStringSlice("strategies", nil),
			Timeout:    request.GetInt("timeout", 0),
		}
		if v, ok := request.GetArguments()["force_browser"].(bool); ok {
			req.ForceBrowser = &v
		}

		respBody, err := apiPost(ctx, client, apiURL, "/api/v1/extract", req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract request failed: %v", err)), nil
		}

		var resp models.ExtractResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(failure(resp)), nil
		}
		return mcp.NewToolResultText(formatArticle(resp.Article, resp.MethodsTried)), nil
	}
}

func handleBatch(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		payload := models.BatchRequest{
			URLs:        urls,
			Concurrency: request.GetInt("concurrency", 0),
		}
		respBody, err := apiPost(ctx, client, apiURL, "/api/v1/batch/extract", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var resp models.BatchResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}
		if resp.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Batch: %d/%d succeeded\n\n", resp.Succeeded, resp.Total)
		for i, r := range resp.Results {
			switch {
			case !r.Success:
				fmt.Fprintf(&sb, "--- [%d] %s FAILED: %s ---\n\n", i+1, urls[i], failure(*r))
			case r.DuplicateOf != nil:
				fmt.Fprintf(&sb, "--- [%d] %s: duplicate of [%d] ---\n\n", i+1, urls[i], *r.DuplicateOf+1)
			default:
				fmt.Fprintf(&sb, "--- [%d] ---\n%s\n\n", i+1, formatArticle(r.Article, r.MethodsTried))
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func formatArticle(a *models.ArticleResult, tried []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nSource: %s\n", a.Title, a.URL)
	if a.Date != "" {
		fmt.Fprintf(&sb, "Date: %s\n", a.Date)
	}
	for _, img := range a.Images {
		fmt.Fprintf(&sb, "Image: %s\n", img)
	}
	for _, v := range a.Videos {
		fmt.Fprintf(&sb, "Video: %s\n", v)
	}
	sb.WriteString("\n")
	sb.WriteString(a.Text)
	fmt.Fprintf(&sb, "\n\n---\nMethod: %s (tried: %s)",
		strings.Join(a.Method, ", "), strings.Join(tried, ", "))
	return sb.String()
}

func failure(r models.ExtractResponse) string {
	if r.Error == nil {
		return "extraction failed"
	}
	return fmt.Sprintf("[%s] %s", r.Error.Code, r.Error.Message)
}
