package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/webdigest/models"
)

// client talks to the webdigest HTTP API.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// do sends a request and decodes the JSON body into out, whatever the status.
func (c *client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.baseURL, "/")+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

func newServer(c *client) *server.MCPServer {
	s := server.NewMCPServer(
		"webdigest",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	summarizeTool := mcp.NewTool("summarize_url",
		mcp.WithDescription("Load a web page in a headless browser and return an LLM summary: name, summary, labels, key points, useful links, related content and the best images. The summary is stored and listed by list_summaries."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to summarize"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Accept a cached summary younger than this many milliseconds (default: 0, always summarize)"),
			mcp.Min(0),
		),
	)
	s.AddTool(summarizeTool, handleSummarizeURL(c))

	listTool := mcp.NewTool("list_summaries",
		mcp.WithDescription("List every stored summary with its id, URL, creation time, name and summary text."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listTool, handleListSummaries(c))

	return s
}

func handleSummarizeURL(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := models.SummarizeRequest{
			URL:    url,
			MaxAge: request.GetInt("max_age", 0),
		}

		var resp models.SummarizeResponse
		if err := c.do(ctx, http.MethodPost, "/api/v1/summarize", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success || resp.Result == nil {
			return mcp.NewToolResultError(errorText("summarize failed", resp.Error)), nil
		}

		return mcp.NewToolResultText(formatSummary(resp.WebsiteLink, resp.Result, resp.CacheStatus)), nil
	}
}

func handleListSummaries(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var resp models.SummariesResponse
		if err := c.do(ctx, http.MethodGet, "/api/v1/summaries", nil, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errorText("list failed", resp.Error)), nil
		}

		if len(resp.Summaries) == 0 {
			return mcp.NewToolResultText("No summaries stored yet."), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d summaries:\n\n", resp.Total)
		for i, s := range resp.Summaries {
			fmt.Fprintf(&sb, "--- [%d] %s ---\nID: %s\nURL: %s\nCreated: %s\n%s\n\n",
				i+1, s.Result.Name, s.ID, s.WebsiteLink, s.CreatedAt.Format("2006-01-02 15:04:05 MST"), s.Result.Summary)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func errorText(fallback string, detail *models.ErrorDetail) string {
	if detail == nil {
		return fallback
	}
	return fmt.Sprintf("[%s] %s", detail.Code, detail.Message)
}

// formatSummary renders a summary as plain text for the model.
func formatSummary(link string, r *models.SummaryResult, cacheStatus string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\nSource: %s\n", r.Name, link)
	if cacheStatus == "hit" {
		sb.WriteString("(served from cache)\n")
	}
	fmt.Fprintf(&sb, "\n%s\n", r.Summary)

	if len(r.Labels) > 0 {
		fmt.Fprintf(&sb, "\nLabels: %s\n", strings.Join(r.Labels, ", "))
	}
	if len(r.KeyPoints) > 0 {
		sb.WriteString("\nKey points:\n")
		for _, kp := range r.KeyPoints {
			fmt.Fprintf(&sb, "- %s: %s\n", kp.Title, kp.Value)
		}
	}
	writeLinks(&sb, "Useful links", r.UsefulLinks)
	writeLinks(&sb, "Related content", r.RelatedContent)
	if len(r.Images) > 0 {
		sb.WriteString("\nImages:\n")
		for _, img := range r.Images {
			fmt.Fprintf(&sb, "- %s (%s)\n", img.Src, img.Alt)
		}
	}
	return sb.String()
}

func writeLinks(sb *strings.Builder, title string, links []models.LinkRef) {
	if len(links) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, l := range links {
		fmt.Fprintf(sb, "- %s: %s\n", l.Title, l.URL)
	}
}
