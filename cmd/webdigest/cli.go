package main

import (
	"context"
	"io"

	"github.com/use-agent/webdigest/api/handler"
	"github.com/use-agent/webdigest/cache"
	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/pipeline"
	"github.com/use-agent/webdigest/webhook"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Config   *config.Config
	Store    pipeline.Store
	Source   pipeline.PageSource
	Runner   handler.Runner
	Cache    *cache.Cache
	Notifier *webhook.Notifier
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `type:"path" env:"WEBDIGEST_CONFIG" help:"YAML configuration file"`

	Serve     ServeCmd     `cmd:"" default:"1" help:"Run the HTTP API (default command)"`
	Summarize SummarizeCmd `cmd:"" help:"Summarize one URL and print the result as JSON"`
	List      ListCmd      `cmd:"" help:"List persisted summaries"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Host string `help:"Override the listen host"`
	Port int    `help:"Override the listen port"`
}

// SummarizeCmd is the "summarize" subcommand.
type SummarizeCmd struct {
	URL     string `arg:"" help:"Page to summarize"`
	Compact bool   `help:"Print JSON on one line"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	JSON bool `help:"Print summaries as a JSON array"`
}
