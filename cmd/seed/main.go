// Command seed loads the development catalog into PostgreSQL so the server
// can run with CATALOG_BACKEND=postgres. It reuses the server configuration
// and is safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/config"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/memory"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/postgres"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/postgres/migrations"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/database"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

type productUpserter interface {
	Upsert(ctx context.Context, p *domain.Product) error
}

type categoryUpserter interface {
	Upsert(ctx context.Context, c *domain.Category) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	data := memory.Seed(time.Now())
	err = seedCatalog(ctx, postgres.NewCategoryRepository(pool), postgres.NewProductRepository(pool), data, log)
	if err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("catalog seeded",
		slog.Int("categories", len(data.Categories)),
		slog.Int("products", len(data.Products)),
		slog.String("db", pgCfg.DBName),
	)
}

// seedCatalog writes categories before products so product foreign keys resolve.
func seedCatalog(ctx context.Context, categories categoryUpserter, products productUpserter, data memory.SeedData, log *slog.Logger) error {
	for i := range data.Categories {
		if err := categories.Upsert(ctx, &data.Categories[i]); err != nil {
			return fmt.Errorf("category %q: %w", data.Categories[i].Name, err)
		}
		log.Debug("category upserted", slog.String("id", data.Categories[i].ID))
	}
	for i := range data.Products {
		if err := products.Upsert(ctx, &data.Products[i]); err != nil {
			return fmt.Errorf("product %q: %w", data.Products[i].Name, err)
		}
		log.Debug("product upserted", slog.String("id", data.Products[i].ID))
	}
	return nil
}
