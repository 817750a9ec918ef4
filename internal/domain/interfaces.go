package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kedr891/metal-rates-service/internal/entity"
)

type ProductRepository interface {
	GetProductsByMetal(ctx context.Context, metal entity.MetalType) ([]entity.Product, error)
	GetAllProducts(ctx context.Context) ([]entity.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	UpdateProductPricing(ctx context.Context, product *entity.Product) error
}

type RateRepository interface {
	Get(ctx context.Context) (*entity.MetalRate, error)
	Set(ctx context.Context, metal entity.MetalType, rate float64, now time.Time) (*entity.MetalRate, error)
}

// PriceCalculator - внешний коллаборатор пересчёта цены.
// Реализация непрозрачна для ядра: сервис отвечает только за то, какие
// курсы передать и какие поля изделия обновить по результату.
type PriceCalculator interface {
	Calculate(product *entity.Product, overrides entity.RateOverrides) float64
}

type CacheStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type EventProducer interface {
	WriteMessage(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Broadcaster - хаб живых подписок. Broadcast не возвращает ошибку:
// сбои отдельных подписчиков изолируются внутри хаба.
type Broadcaster interface {
	Broadcast(event *entity.RateUpdateEvent)
}

type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
