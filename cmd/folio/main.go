// Package main is the entry point for the Folio editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/folio/internal/app"
	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/input/resize"
	"github.com/dshills/folio/internal/renderer"
	"github.com/dshills/folio/internal/renderer/backend"
	"github.com/dshills/folio/internal/renderer/core"
	"github.com/dshills/folio/internal/renderer/measure"
	"github.com/dshills/folio/internal/renderer/statusline"
	"github.com/dshills/folio/internal/storage/sqlite"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options are the command line settings. Empty values leave the
// configured setting alone.
type options struct {
	ConfigPath string
	LogLevel   string
	DBPath     string
	ExportDir  string
	ScriptDir  string
	OpenID     string
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "paginate" {
		os.Exit(runPaginate(os.Args[2:], os.Stdin, os.Stdout, os.Stderr))
	}
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(os.Stderr, "Error: folio needs a terminal; use \"folio paginate\" to paginate a file\n")
		return 1
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
		return 1
	}
	defer closeLog()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open document store: %v\n", err)
		return 1
	}
	defer store.Close()

	screen, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Shutdown()

	width, height := screen.Size()
	cells := measure.NewCells(cfg.PageWidth, cfg.PageHeight)
	view := renderer.NewView(screen, cells, core.RectFromSize(0, 0, height-1, width))

	session, err := app.NewSession(cells, view,
		app.WithLogger(logger),
		app.WithStore(store),
		app.WithExportDir(cfg.ExportDir),
		app.WithMinSize(resize.Size{Width: cfg.MinWidth, Height: cfg.MinHeight}),
		app.WithScriptTimeout(cfg.ScriptTimeout),
	)
	if err != nil {
		screen.Shutdown()
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer session.Close()

	ed := &editor{
		session: session,
		screen:  screen,
		view:    view,
		status:  statusline.New(),
		logger:  logger,
	}
	ed.status.Resize(width)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		screen.Interrupt()
	}()

	if cfg.ScriptDir != "" {
		if _, err := session.LoadScripts(ctx, cfg.ScriptDir); err != nil {
			ed.report(err)
		}
	}
	if opts.OpenID != "" {
		if err := session.Open(ctx, opts.OpenID); err != nil {
			ed.report(err)
		}
	}

	if err := ed.run(ctx); err != nil && !errors.Is(err, errQuit) {
		screen.Shutdown()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.DBPath, "db", "", "Path to the document database")
	flag.StringVar(&opts.ExportDir, "export-dir", "", "Directory exported files are written to")
	flag.StringVar(&opts.ScriptDir, "scripts", "", "Directory of Lua command scripts")
	flag.StringVar(&opts.OpenID, "open", "", "Open the stored document with this id")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Folio - paginated document editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: folio [options]\n")
		fmt.Fprintf(os.Stderr, "       folio paginate [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-B/I/U  bold, italic, underline\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Z/Y    undo, redo\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-N      new page\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-S      save\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-O      open a saved document\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-E      export as .doc\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-D      export as .html\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-R      write a printable page\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-P      write print preview\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-F      find and replace\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-T      insert table\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-G      insert image from a file or URL\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-L      link the selection\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-K      command line (empty to list commands)\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-C/X/W  copy text, HTML or a mail link\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Q      quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Folio %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}
	return opts
}

// loadConfig reads the settings and applies the flags over them.
func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.ExportDir != "" {
		cfg.ExportDir = opts.ExportDir
	}
	if opts.ScriptDir != "" {
		cfg.ScriptDir = opts.ScriptDir
	}
	return cfg, nil
}

// openLogger logs to the configured file. Without one, logs are dropped
// since the terminal belongs to the editor.
func openLogger(cfg config.Config) (*app.Logger, func(), error) {
	if cfg.LogFile == "" {
		return app.NullLogger, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	lc := app.DefaultLoggerConfig()
	lc.Level = app.ParseLogLevel(cfg.LogLevel)
	lc.Output = f
	return app.NewLogger(lc), func() { _ = f.Close() }, nil
}
