package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/kedr891/metal-rates-service/internal/domain"
	"github.com/kedr891/metal-rates-service/internal/entity"
	"github.com/kedr891/metal-rates-service/internal/pricing"
)

const (
	_defaultWorkers        = 10
	_defaultProductTimeout = 5 * time.Second

	_catalogCachePattern = "catalog:*"
	_ratesSummaryKey     = "rates:summary"
	_ratesSummaryTTL     = 2 * time.Minute
)

// RateService - координатор массовой смены курса металла.
//
// Валидация и поиск затронутых изделий происходят до каких-либо мутаций;
// дальше пересчёт и сохранение идут конкурентно и независимо по изделиям,
// затем фиксируется канонический курс и запускаются best-effort эффекты:
// рассылка подписчикам, событие в Kafka, инвалидация кеша. Ни один из
// вторичных шагов не способен провалить уже выполненные обновления цен.
type RateService struct {
	products   domain.ProductRepository
	rates      domain.RateRepository
	calc       domain.PriceCalculator
	hub        domain.Broadcaster
	producer   domain.EventProducer
	cache      domain.CacheStorage
	log        domain.Logger
	workers    int
	perProduct time.Duration
}

// RateServiceOption - функция настройки сервиса
type RateServiceOption func(*RateService)

// WithWorkers - предел конкурентных обновлений изделий
func WithWorkers(n int) RateServiceOption {
	return func(s *RateService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProductTimeout - таймаут пересчёта и сохранения одного изделия.
// Истёкший таймаут считается отказом изделия и не попадает в счётчик.
func WithProductTimeout(d time.Duration) RateServiceOption {
	return func(s *RateService) {
		if d > 0 {
			s.perProduct = d
		}
	}
}

func NewRateService(
	products domain.ProductRepository,
	rates domain.RateRepository,
	calc domain.PriceCalculator,
	hub domain.Broadcaster,
	producer domain.EventProducer,
	cache domain.CacheStorage,
	log domain.Logger,
	opts ...RateServiceOption,
) *RateService {
	s := &RateService{
		products:   products,
		rates:      rates,
		calc:       calc,
		hub:        hub,
		producer:   producer,
		cache:      cache,
		log:        log,
		workers:    _defaultWorkers,
		perProduct: _defaultProductTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// UpdateMetalRate - применить новый курс металла ко всему каталогу.
func (s *RateService) UpdateMetalRate(ctx context.Context, metalType string, newRate float64) (*entity.RateUpdateResult, error) {
	if metalType == "" {
		return nil, entity.ValidationError("metalType is required")
	}
	if newRate <= 0 {
		return nil, entity.ValidationError("newRate must be a positive number")
	}

	metal := entity.NormalizeMetalType(metalType)

	prevRate := 0.0
	if current, err := s.rates.Get(ctx); err != nil {
		s.log.Warn("failed to load current rates, treating previous rate as unset",
			"metal_type", metal, "error", err)
	} else {
		prevRate = current.RateFor(metal)
	}

	candidates, err := s.products.GetProductsByMetal(ctx, metal)
	if err != nil {
		return nil, fmt.Errorf("get products by metal: %w", err)
	}

	matched := pricing.MatchProducts(candidates, metal)
	if len(matched) == 0 {
		return nil, entity.ErrNoProducts
	}

	s.log.Info("Starting metal rate update",
		"metal_type", metal,
		"new_rate", newRate,
		"prev_rate", prevRate,
		"matched", len(matched),
	)

	updatedCount := s.updateProducts(ctx, matched, metal, newRate, prevRate)

	// Канонический курс фиксируется после того, как все обновления изделий
	// были попытаны. Его отказ логируется, но операцию не проваливает:
	// цены изделий уже изменились и должны быть отражены в ответе.
	if _, err := s.rates.Set(ctx, metal, newRate, time.Now()); err != nil {
		s.log.Error("failed to persist canonical rate",
			"metal_type", metal, "new_rate", newRate, "error", err)
	}

	result := &entity.RateUpdateResult{
		Success:      true,
		UpdatedCount: updatedCount,
		MetalType:    metal,
		NewRate:      newRate,
	}

	event := entity.NewRateUpdateEvent(result)
	runSideEffects(ctx, s.log,
		sideEffect{name: "sse_broadcast", run: func(ctx context.Context) error {
			s.hub.Broadcast(event)
			return nil
		}},
		sideEffect{name: "kafka_publish", run: func(ctx context.Context) error {
			return s.producer.WriteMessage(ctx, string(metal), event)
		}},
		sideEffect{name: "cache_invalidation", run: func(ctx context.Context) error {
			if err := s.cache.DeleteByPattern(ctx, _catalogCachePattern); err != nil {
				return err
			}
			return s.cache.Delete(ctx, _ratesSummaryKey)
		}},
	)

	s.log.Info("Metal rate update completed",
		"metal_type", metal,
		"new_rate", newRate,
		"matched", len(matched),
		"updated", updatedCount,
	)

	return result, nil
}

// updateProducts - конкурентный пересчёт и сохранение совпавших изделий.
// Это барьер: ждём завершения всех задач, итог каждой учитывается.
// Отказ одного изделия логируется и исключается из счётчика, не прерывая
// остальных; отката нет - изделия независимы.
func (s *RateService) updateProducts(
	ctx context.Context,
	matched []entity.Product,
	metal entity.MetalType,
	newRate, prevRate float64,
) int {
	var (
		updatedCount int
		mu           sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, product := range matched {
		product := product

		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, s.perProduct)
			defer cancel()

			if err := s.updateSingleProduct(pctx, &product, metal, newRate, prevRate); err != nil {
				s.log.Error("failed to update product pricing",
					"product_id", product.ID,
					"sku", product.SKU,
					"metal_type", metal,
					"error", err,
				)
				return nil
			}

			mu.Lock()
			updatedCount++
			mu.Unlock()
			return nil
		})
	}

	// Воркеры не возвращают ошибок - Wait здесь только барьер.
	_ = g.Wait()

	return updatedCount
}

func (s *RateService) updateSingleProduct(
	ctx context.Context,
	product *entity.Product,
	metal entity.MetalType,
	newRate, prevRate float64,
) error {
	pricing.ApplyRate(product, metal, newRate, prevRate, s.calc, time.Now())

	if err := s.products.UpdateProductPricing(ctx, product); err != nil {
		return fmt.Errorf("persist product: %w", err)
	}

	return nil
}

// GetRatesSummary - публичная сводка: канонические курсы и количество
// изделий по металлам. Классификация считается с приоритетом платины,
// иначе платиновые изделия были бы посчитаны как золотые через общую
// колонку курса. Ответ кешируется на короткий TTL.
func (s *RateService) GetRatesSummary(ctx context.Context) (*entity.MetalRateSummary, error) {
	if cached, err := s.cache.Get(ctx, _ratesSummaryKey); err == nil && cached != "" {
		var summary entity.MetalRateSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	rates, err := s.rates.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get canonical rates: %w", err)
	}
	if rates == nil {
		rates = &entity.MetalRate{}
	}

	products, err := s.products.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	counts := make(map[entity.MetalType]int)
	for i := range products {
		if class := pricing.Classify(&products[i]); class != "" {
			counts[class]++
		}
	}

	summary := &entity.MetalRateSummary{
		Rates:         rates,
		ProductCounts: counts,
		GeneratedAt:   time.Now(),
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, _ratesSummaryKey, string(payload), _ratesSummaryTTL); err != nil {
			s.log.Debug("failed to cache rates summary", "error", err)
		}
	}

	return summary, nil
}
