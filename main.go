package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"compsbot/agent"
	"compsbot/comps"
	"compsbot/config"
	"compsbot/mcp"
	"compsbot/pdf"
	"compsbot/provider"
	"compsbot/storage"
	"compsbot/summary"
	"compsbot/telemetry"
	"compsbot/tools"
	"compsbot/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	mode := "chat"
	if len(args) > 0 {
		mode = args[0]
	}
	if mode != "chat" && mode != "mcp" {
		return fmt.Errorf("unknown command %q (usage: compsbot [chat|mcp])", mode)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile := config.InitLog(cfg.DataDir())
	defer logFile.Close()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration (%s): %w", config.GetSettingsFilePath(), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry.Version = Version
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	llm, err := provider.FromConfig(cfg.LLM)
	if err != nil {
		return err
	}
	if err := llm.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("provider", cfg.LLM.Provider).Msg("provider not reachable, continuing")
	}

	engine, err := pdf.NewEngine(cfg.PDF.Engine)
	if err != nil {
		return err
	}
	renderer := pdf.NewRenderer(config.ExpandPath(cfg.PDF.OutputPath), engine)

	registry := tools.NewRegistry(
		comps.NewClient(comps.Config{
			Host:    cfg.Comps.Host,
			APIKey:  cfg.Comps.APIKey,
			BaseURL: cfg.Comps.BaseURL,
		}),
		summary.New(llm),
		renderer,
	)

	log.Info().
		Str("mode", mode).
		Str("provider", cfg.LLM.Provider).
		Str("model", llm.GetModel()).
		Str("pdf_engine", engine.Name()).
		Msg("compsbot starting")

	if mode == "mcp" {
		return mcp.NewServer("compsbot", Version, registry).ServeStdio(ctx, os.Stdin, os.Stdout)
	}

	sessionCfg := cfg.Session
	if sessionCfg.SQLiteDSN != "" {
		sessionCfg.SQLiteDSN = config.ExpandPath(sessionCfg.SQLiteDSN)
	}
	store, err := storage.New(sessionCfg)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	threadID := cfg.Session.ThreadID
	if threadID == "" {
		threadID = storage.NewThreadID()
	}
	log.Info().Str("thread", threadID).Str("backend", cfg.Session.Backend).Msg("session ready")

	controller := agent.NewController(llm, registry, store, agent.Options{
		SystemPrompt: cfg.Agent.SystemPrompt,
		MaxSteps:     cfg.Agent.MaxSteps,
	})

	return ui.Run(ctx, controller, threadID, renderer.Path())
}
