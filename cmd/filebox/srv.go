package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"filebox/internal/blobstore"
	"filebox/internal/config"
	"filebox/internal/server"
	"filebox/internal/sessionstore"
	"filebox/internal/store"
	"filebox/internal/thumbnail"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the filebox API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			if err := server.ValidateListenAddr(cfg.ListenAddr); err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			sessions, err := sessionstore.Open(cfg.SessionDir)
			if err != nil {
				return err
			}
			defer sessions.Close()

			blobs, err := blobstore.NewLocal(cfg.BlobRoot)
			if err != nil {
				return err
			}

			pipeline := thumbnail.New(st, blobs, slog.Default().With("component", "thumbnail"))
			pipeline.Start(context.Background(), cfg.ThumbnailWorkers)
			defer pipeline.Close()

			accounts := server.NewAccountService(st)
			sessionService := server.NewSessionService(accounts, sessions)
			sessionService.SetTTL(time.Duration(cfg.SessionTTLHours) * time.Hour)
			files := server.NewFileService(st, blobs, pipeline, logger)
			guard := server.NewAccessGuard(st, blobs)

			srv := server.New(cfg.ListenAddr, accounts, sessionService, files, guard, logger)
			srv.SetMaxUploadBytes(cfg.MaxUploadBytes)
			return srv.ListenAndServe()
		},
	}
}
