package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"craftmarket/internal/api"
	"craftmarket/internal/blob"
	"craftmarket/internal/config"
	"craftmarket/internal/payment"
	"craftmarket/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// immediate transactions keep writer serialization at the BEGIN, not at
	// the first write inside the transaction
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", cfg.DB.Path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open db")
	}
	defer db.Close()

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate db")
	}

	ctx := context.Background()
	blobs, err := blob.NewS3Store(ctx, cfg.Blob)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect blob store")
	}
	payments := payment.NewClient(cfg.Payment)

	r := api.SetupRouter(st, blobs, payments, []byte(cfg.Auth.SigningKey))

	log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
