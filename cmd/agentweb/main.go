package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lhyssy/AI-Agent-code-web/internal/broadcast"
	"github.com/lhyssy/AI-Agent-code-web/internal/chat"
	"github.com/lhyssy/AI-Agent-code-web/internal/config"
	"github.com/lhyssy/AI-Agent-code-web/internal/llm"
	"github.com/lhyssy/AI-Agent-code-web/internal/logging"
	"github.com/lhyssy/AI-Agent-code-web/internal/orchestrator"
	"github.com/lhyssy/AI-Agent-code-web/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configFile string
		port       int
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:   "agentweb",
		Short: "Collaborative AI agent team server",
		Long: `agentweb runs a team of five AI agent personas that process user
requests as a pipeline and stream their progress to connected clients
over websockets.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if debug {
				cfg.Server.Debug = true
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.Flags().IntVarP(&port, "port", "p", 5000, "HTTP listen port")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "Debug mode")

	return rootCmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	logger := logging.NewComponentLogger("Main")

	logger.Info("starting agentweb server")
	logger.Info("provider: %s, model: %s", cfg.LLM.Provider, cfg.LLM.Model)

	client, err := llm.New(cfg.LLM)
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}

	hub := broadcast.NewHub()
	system := orchestrator.NewSystem(client, hub,
		orchestrator.WithStepTimeout(cfg.LLM.StepTimeout),
		orchestrator.WithLogger(logging.NewComponentLogger("Orchestrator")),
	)
	chatSvc := chat.NewService(client, hub)

	srv := server.New(cfg.Server, system, chatSvc, hub)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	logger.Info("server stopped")
	return nil
}
