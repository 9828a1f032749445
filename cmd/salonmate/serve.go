package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ninhvo/salonmate/internal/config"
	"github.com/ninhvo/salonmate/internal/model"
	"github.com/ninhvo/salonmate/internal/orchestrator"
	"github.com/ninhvo/salonmate/internal/server"
	"github.com/ninhvo/salonmate/internal/session"
	"github.com/ninhvo/salonmate/internal/suggest"
	"github.com/ninhvo/salonmate/internal/tool"
	_ "github.com/ninhvo/salonmate/internal/tool/builtin"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant server",
	Long:  `Start the HTTP and WebSocket server that powers SalonMate conversations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	router, err := model.NewRouter(cfg.Models)
	if err != nil {
		return fmt.Errorf("init model router: %w", err)
	}

	embedder := &routerEmbedder{router: router, modelName: cfg.Models.Embedding}

	engine := suggest.NewEngine(embedder, cfg.Suggest.TopK, cfg.Suggest.MinScore)
	knowledge := suggest.NewKnowledgeIndex(embedder)
	if cfg.Suggest.SeedPath != "" {
		seed, err := suggest.LoadSeedFile(cfg.Suggest.SeedPath)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
		if err := engine.Seed(ctx, seed.Questions); err != nil {
			return fmt.Errorf("seed suggestions: %w", err)
		}
		if err := knowledge.Seed(ctx, seed.Knowledge); err != nil {
			return fmt.Errorf("seed knowledge: %w", err)
		}
		slog.Info("Seeded semantic indexes",
			"questions", len(seed.Questions), "snippets", len(seed.Knowledge))
	}

	salonTimeout, err := config.DurationOrDefault(cfg.Tools.Salon.Timeout, config.DefaultSalonToolTimeout)
	if err != nil {
		return fmt.Errorf("parse salon tool timeout: %w", err)
	}

	builtins, err := tool.InstantiateBuiltins(tool.BuiltinOptions{
		SalonBaseURL: cfg.Tools.Salon.BaseURL,
		SalonTimeout: salonTimeout,
		Adviser:      orchestrator.NewModelAdviser(router, cfg.Models.Default),
		Knowledge:    &knowledgeAdapter{index: knowledge},
	})
	if err != nil {
		return fmt.Errorf("instantiate tools: %w", err)
	}

	registry := tool.NewRegistry()
	for _, t := range builtins {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("register tool: %w", err)
		}
	}
	runner := tool.NewRunner(registry, salonTimeout)

	store := session.NewStore()

	orch, err := orchestrator.New(router, runner, store, engine, cfg)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	srv, err := server.New(orch, cfg.Server)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	scheduler, err := startEviction(store)
	if err != nil {
		return fmt.Errorf("start eviction job: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		scheduler.Stop()
		return err
	case sig := <-sigCh:
		slog.Info("Shutting down", "signal", sig)
	case <-ctx.Done():
		slog.Info("Shutting down", "reason", ctx.Err())
	}

	scheduler.Stop()

	shutdownTimeout, err := config.DurationOrDefault(cfg.Server.ShutdownTimeout, config.DefaultServerShutdownTimeout)
	if err != nil {
		shutdownTimeout = 0
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startEviction schedules periodic removal of idle sessions.
func startEviction(store *session.Store) (*cron.Cron, error) {
	idleTTL, err := config.DurationOrDefault(cfg.Sessions.IdleTTL, config.DefaultSessionsIdleTTL)
	if err != nil {
		return nil, fmt.Errorf("parse idle ttl: %w", err)
	}

	schedule := cfg.Sessions.EvictSchedule
	if schedule == "" {
		schedule = config.DefaultSessionsEvictSchedule
	}

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		store.EvictIdle(idleTTL)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}

	c.Start()
	slog.Info("Session eviction scheduled", "schedule", schedule, "idle_ttl", idleTTL)
	return c, nil
}
