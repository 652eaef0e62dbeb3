package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dayboard/internal/api"
	"dayboard/internal/auth"
	"dayboard/internal/config"
	"dayboard/internal/dashboard"
	"dayboard/internal/google"
	"dayboard/internal/store"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := setupLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer st.Close()

	refresher := auth.NewRefresher(cfg.OAuth2(auth.Scopes...), st, logger)
	clients := google.NewClients(google.Options{
		GmailEndpoint:    cfg.GmailEndpoint,
		CalendarEndpoint: cfg.CalendarEndpoint,
		BreakerTimeout:   cfg.BreakerTimeout,
	}, logger)
	svc := dashboard.NewService(auth.NewResolver(st, refresher), clients, cfg.ProviderTimeout, logger)
	handler := api.NewHandler(svc, cfg.SessionSecret, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2*cfg.ProviderTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "credential_backend", cfg.CredentialBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
