package bootstrap

import (
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/redis/go-redis/v9"

	"github.com/kedr891/metal-rates-service/config"
	"github.com/kedr891/metal-rates-service/migrations"
	"github.com/kedr891/metal-rates-service/pkg/logger"
	"github.com/kedr891/metal-rates-service/pkg/postgres"
	redisPkg "github.com/kedr891/metal-rates-service/pkg/redis"
)

func InitPostgres(cfg *config.Config, log *logger.Logger) *postgres.Postgres {
	pg, err := postgres.New(cfg.PG.URL, postgres.WithMaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		log.Fatal("ошибка подключения к postgres", "error", err)
	}

	if err := runMigrations(cfg.PG.URL); err != nil {
		pg.Close()
		log.Fatal("ошибка применения миграций", "error", err)
	}

	return pg
}

func runMigrations(pgURL string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	// migrate регистрирует pgx/v5 драйвер под схемой pgx5
	url := strings.Replace(pgURL, "postgres://", "pgx5://", 1)

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func InitCache(cfg *config.Config, log *logger.Logger) (*redis.Client, func()) {
	client, err := redisPkg.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("ошибка инициализации кеша", "error", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
