// Command groupchat runs one bounded incident-response group chat over a log
// file and prints the transcript and outcome.
//
//	groupchat -log logs/app.log -prompt "auth-api is failing"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/kernel"
	"github.com/tailored-agentic-units/groupchat/observability"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const defaultPrompt = "An incident was reported. Diagnose the log and remediate until no action is needed."

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "groupchat: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var (
		configFile = flag.String("config", "", "Path to config JSON file")
		prompt     = flag.String("prompt", defaultPrompt, "Opening user message")
		logPath    = flag.String("log", "", "Path to the incident log (overrides config)")
		driver     = flag.String("backend", "", "Backend driver: rules or openai (overrides config)")
		maxTurns   = flag.Int("max-turns", 0, "Maximum agent turns (overrides config)")
		personas   = flag.String("personas", "", "Path to a YAML persona catalog (overrides config)")
		reportDir  = flag.String("report-dir", "", "Directory for saved reports (overrides config)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg := kernel.DefaultConfig()
	if *configFile != "" {
		loaded, err := kernel.LoadConfig(*configFile)
		if err != nil {
			return exitConfig, err
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return exitConfig, err
	}

	if *logPath != "" {
		cfg.Chat.LogPath = *logPath
	}
	if *driver != "" {
		cfg.Backend.Driver = *driver
	}
	if *maxTurns > 0 {
		cfg.Chat.MaxTurns = *maxTurns
	}
	if *personas != "" {
		cfg.Personas = *personas
	}
	if *reportDir != "" {
		cfg.Report.Path = *reportDir
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := setupTracing(ctx)
	if err != nil {
		return exitConfig, fmt.Errorf("tracing setup: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	out := newRenderer(os.Stdout)

	k, err := kernel.New(&cfg,
		kernel.WithObserver(observability.NewMultiObserver(
			observability.NewSlogObserver(logger),
			observability.TraceObserver{},
		)),
		kernel.WithTurnFunc(func(turn int, msg protocol.Message) { out.turn(turn, msg) }),
	)
	if err != nil {
		if errors.Is(err, orchestrate.ErrConfiguration) {
			return exitConfig, err
		}
		return exitRuntime, err
	}
	defer k.Close()

	out.prompt(*prompt)

	rep, err := k.Run(ctx, *prompt)
	if rep != nil {
		out.summary(rep)
		if k.Store() != nil {
			out.saved(rep.ID, cfg.Report.Path)
		}
	}
	if err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}
