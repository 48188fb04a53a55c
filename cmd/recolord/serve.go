package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pssnndl/Recolorization/internal/config"
	"github.com/pssnndl/Recolorization/internal/engine"
	"github.com/pssnndl/Recolorization/internal/gateway"
	"github.com/pssnndl/Recolorization/internal/imaging"
	"github.com/pssnndl/Recolorization/internal/llm"
	"github.com/pssnndl/Recolorization/internal/palette"
	"github.com/pssnndl/Recolorization/internal/server"
	"github.com/pssnndl/Recolorization/internal/session"
	"github.com/pssnndl/Recolorization/internal/version"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket API",
	Long: `Start the recoloring service.

Endpoints:
  POST /agent/chat                                    one conversation turn
  GET  /agent/chat/{session}                          session state snapshot
  POST /agent/chat/{session}/select-palette/{index}   promote a candidate
  GET  /agent/ws                                      websocket chat stream
  GET  /health                                        liveness

Configuration comes from ~/.config/recolor/config.yaml, a .recolor.yaml in
the project tree, and environment variables (ANTHROPIC_API_KEY,
RECOLOR_MODEL_URL, RECOLOR_ADDR, RECOLOR_DB_PATH).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe() error {
	// A .env next to the binary is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "recolord",
	})
	logger.Info("starting", "version", version.Get(), "addr", cfg.Server.Addr)

	dbPath := cfg.Session.DBPath
	if dbPath == "" {
		dbPath = session.DefaultDBPath()
	}
	db, err := session.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate session store: %w", err)
	}
	logger.Info("session store ready", "path", db.Path())

	eng := engine.New(engine.Config{
		Store:     db,
		LLM:       buildLLM(cfg, logger),
		Recolorer: gateway.NewModelClient(cfg.Model.URL, cfg.Model.Timeout),
		Fetcher:   palette.NewExternalClient(cfg.Palette.ExternalURL, cfg.Palette.FetchTime),
		Validator: imaging.NewValidator(imaging.Config{
			MaxBytes: cfg.Image.MaxBytes,
			MaxDim:   cfg.Image.MaxDim,
			Block:    cfg.Image.Block,
		}),
		Slots:  cfg.Palette.Slots,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session.StartSweeper(ctx, db, cfg.Session.TTL, cfg.Session.SweepInterval, logger)

	srv := server.New(eng, db, logger)
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildLLM returns the language-model gateway, or nil when no key is
// configured. Without it, palette description and chat degrade with
// user-facing messages; everything else still works.
func buildLLM(cfg *config.Config, logger *log.Logger) engine.LLM {
	key, err := config.GetAPIKey(cfg)
	if err != nil {
		logger.Warn("no Anthropic API key; palette generation and chat are disabled")
		return nil
	}
	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:  key,
		Model:   cfg.Anthropic.Model,
		Timeout: cfg.Anthropic.Timeout,
	})
	if err != nil {
		logger.Warn("language model unavailable", "error", err)
		return nil
	}
	logger.Info("language model ready",
		"model", client.Model(), "key", config.MaskAPIKey(key))
	return client
}
