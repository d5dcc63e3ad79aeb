package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"pkt.systems/soapgen"
	"pkt.systems/soapgen/internal/server"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  serveE,
	}

	addLoggingFlags(serveCmd.Flags())
	addConfigFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", "", "Listen address (overrides config)")
	serveCmd.Flags().StringSlice("allow-origin", nil, "Allowed CORS origins (overrides config)")

	return serveCmd
}

func serveE(cmd *cobra.Command, args []string) error {
	logger := loggerFromCmd(cmd)

	cfg, err := resolveConfig(cmd)
	if err != nil {
		logger.Fatal("config", "err", err)
		return nil
	}
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.Listen = v
	}
	if v, _ := cmd.Flags().GetStringSlice("allow-origin"); len(v) > 0 {
		cfg.AllowedOrigins = v
	}

	p, err := soapgen.New(cmd.Context(), soapgen.WithConfig(cfg), soapgen.WithLogger(logger))
	if err != nil {
		logger.Fatal("init", "err", err)
		return nil
	}
	defer p.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(p, logger, cfg.AllowedOrigins).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "model", cfg.Model, "ollama", cfg.OllamaURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", "err", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}
	return nil
}
