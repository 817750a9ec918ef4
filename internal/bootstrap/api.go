package bootstrap

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kedr891/metal-rates-service/config"
	"github.com/kedr891/metal-rates-service/internal/api"
	"github.com/kedr891/metal-rates-service/internal/api/handler"
	"github.com/kedr891/metal-rates-service/internal/api/middleware"
	apiRepo "github.com/kedr891/metal-rates-service/internal/api/repository"
	"github.com/kedr891/metal-rates-service/internal/api/router"
	"github.com/kedr891/metal-rates-service/internal/api/service"
	"github.com/kedr891/metal-rates-service/internal/domain"
	"github.com/kedr891/metal-rates-service/internal/pricing"
	"github.com/kedr891/metal-rates-service/internal/sse"
	"github.com/kedr891/metal-rates-service/pkg/kafka"
	"github.com/kedr891/metal-rates-service/pkg/logger"
	"github.com/kedr891/metal-rates-service/pkg/postgres"
)

type APIComponents struct {
	Hub         *sse.Hub
	RateService *service.RateService
	Producer    domain.EventProducer
	Engine      *gin.Engine
}

func InitAPI(cfg *config.Config, pg *postgres.Postgres, cache *redis.Client, log *logger.Logger) *APIComponents {
	logAdapter := api.NewLoggerAdapter(log)
	cacheAdapter := api.NewRedisAdapter(cache)

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicRateUpdated)
	if err != nil {
		log.Fatal("ошибка инициализации kafka продюсера", "error", err)
	}

	hub := sse.NewHub(cfg.Rates.MaxSubscribers, logAdapter)

	rateService := service.NewRateService(
		apiRepo.NewProductRepository(pg),
		apiRepo.NewRateRepository(pg),
		pricing.NewWeightBasedCalculator(),
		hub,
		producer,
		cacheAdapter,
		logAdapter,
		service.WithWorkers(cfg.Rates.Workers),
		service.WithProductTimeout(time.Duration(cfg.Rates.ProductTimeoutSeconds)*time.Second),
	)

	rateHandler := handler.NewRateHandler(rateService, hub, logAdapter)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, log)

	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.CORS())

	router.SetupRoutes(engine, rateHandler, authMiddleware)

	return &APIComponents{
		Hub:         hub,
		RateService: rateService,
		Producer:    producer,
		Engine:      engine,
	}
}
