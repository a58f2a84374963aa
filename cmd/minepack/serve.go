package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/minepack/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve run history and waivers over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg, nil, log)
	if err != nil {
		return err
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if n, err := db.PruneSessions(timeNow()); err == nil && n > 0 {
		log.Debug("pruned expired sessions", "count", n)
	}

	s := &api.Server{
		DB:              db,
		UserStore:       db,
		Registry:        reg,
		Logger:          log,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		SessionDuration: time.Duration(cfg.Server.SessionHours) * time.Hour,
	}
	srv := &http.Server{
		Addr:              firstNonEmpty(serveAddr, cfg.Server.Addr),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("api listening", "addr", srv.Addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("api shutting down")
	return srv.Shutdown(ctx)
}
