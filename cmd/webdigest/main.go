package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/use-agent/webdigest/cache"
	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/htmlpage"
	"github.com/use-agent/webdigest/llm"
	"github.com/use-agent/webdigest/pipeline"
	"github.com/use-agent/webdigest/scraper"
	"github.com/use-agent/webdigest/store"
	"github.com/use-agent/webdigest/webhook"
)

// cacheTTL is the longest a response stays cached, whatever max_age asks for.
const cacheTTL = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// DB is the summary store, open for the duration of Run.
	DB *store.DB

	// closers run in reverse order on Close.
	closers []func()
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases everything Run opened.
func (m *Main) Close() error {
	for i := len(m.closers) - 1; i >= 0; i-- {
		m.closers[i]()
	}
	m.closers = nil
	if m.DB != nil {
		err := m.DB.Close()
		m.DB = nil
		return err
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webdigest"),
		kong.Description("Summarize web pages into structured JSON with a headless browser and an LLM."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) > 0 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := kongCtx.Command()

	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.LoadFrom(cli.Config)
	if err != nil {
		return err
	}
	deps.Config = cfg

	// ── 2. Initialise structured logging ────────────────────────────
	// Only the server logs to stdout; the other commands keep it for output.
	logOut := stderr
	if cmd == "serve" {
		logOut = stdout
	}
	initLogger(cfg.Log, logOut)

	// ── 3. Open store ───────────────────────────────────────────────
	m.DB = store.NewDB(cfg.Store.Path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintln(stderr, "Hint: set WEBDIGEST_DB_PATH to use a different database path")
		return fmt.Errorf("failed to open database at %q: %w", cfg.Store.Path, err)
	}
	defer m.Close()
	deps.Store = m.DB

	if cmd == "list" {
		return kongCtx.Run(deps)
	}

	// ── 4. Page source and summarizer ───────────────────────────────
	source, closeSource, err := openPageSource(cfg)
	if err != nil {
		if cfg.Browser.Mode == "rod" {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or set WEBDIGEST_BROWSER_MODE=static")
		}
		return err
	}
	m.closers = append(m.closers, closeSource)
	deps.Source = source

	summarizer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create summarizer: %w", err)
	}

	p := pipeline.New(source, summarizer, m.DB, cfg.Scraper, cfg.Limits)
	deps.Runner = p

	// ── 5. Server-only collaborators ────────────────────────────────
	if cmd == "serve" {
		cc := cache.New(cfg.Cache.MaxEntries, cacheTTL)
		m.closers = append(m.closers, cc.Close)
		deps.Cache = cc
		deps.Notifier = webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Secret)
	}

	return kongCtx.Run(deps)
}

// openPageSource starts the page source selected by cfg.Browser.Mode.
func openPageSource(cfg *config.Config) (pipeline.PageSource, func(), error) {
	switch cfg.Browser.Mode {
	case "static":
		src := htmlpage.NewSource(cfg.Browser)
		slog.Info("static page source ready", "maxPages", cfg.Browser.MaxPages)
		return src, src.Close, nil
	case "", "rod":
		sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			return nil, nil, err
		}
		return sc, sc.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown browser mode %q", cfg.Browser.Mode)
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
