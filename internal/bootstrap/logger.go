package bootstrap

import (
	"github.com/kedr891/metal-rates-service/config"
	"github.com/kedr891/metal-rates-service/pkg/logger"
)

func InitLogger(cfg *config.Config) *logger.Logger {
	return logger.New(cfg.Log.Level)
}
