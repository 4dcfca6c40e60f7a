package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"carbon-connect/marketplace-backend/internal/config"
	"carbon-connect/marketplace-backend/internal/database"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	entries, err := os.ReadDir(cfg.Database.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to read migrations directory", zap.Error(err))
	}

	var files []string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		path := filepath.Join(cfg.Database.MigrationsPath, name)
		sql, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("Failed to read migration", zap.String("file", name), zap.Error(err))
		}
		if _, err := db.Exec(string(sql)); err != nil {
			logger.Fatal("Migration failed", zap.String("file", name), zap.Error(err))
		}
		logger.Info("Applied migration", zap.String("file", name))
	}

	fmt.Printf("Applied %d migrations\n", len(files))
}
