// Command webdigest-mcp exposes a running webdigest API as MCP tools over stdio.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("WEBDIGEST_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("WEBDIGEST_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "WEBDIGEST_API_KEY is required")
		os.Exit(1)
	}

	c := &client{
		baseURL: apiURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 180 * time.Second},
	}

	if err := server.ServeStdio(newServer(c)); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
