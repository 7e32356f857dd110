package main

import (
	"context"
	"log"

	"github.com/tlettesaid-hue/secret-chat-1/internal/config"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/database"
	"github.com/tlettesaid-hue/secret-chat-1/internal/repository"
	"go.uber.org/zap"
)

func main() {
	log.Println("Applying schema...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := zap.NewNop()
	db, err := database.NewPostgres(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for _, stmt := range repository.SchemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("Failed to apply schema statement: %v", err)
		}
	}

	log.Println("Schema applied.")
}
