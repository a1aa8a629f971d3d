package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/shared/config"
	"github.com/premierpredict/jackpot-core/internal/shared/db"
	"github.com/premierpredict/jackpot-core/internal/shared/logger"
)

// Passo explícito de migração: roda uma vez no deploy, nunca no request path.
func main() {
	schemaPath := flag.String("schema", "migrations/schema.sql", "caminho do arquivo de schema")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New("migrate", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.ApplySchema(ctx, pg, *schemaPath); err != nil {
		log.Fatal("apply schema", zap.Error(err))
	}
	log.Info("schema applied", zap.String("path", *schemaPath))
}
