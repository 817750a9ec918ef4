package main

import (
	"fmt"

	"github.com/kedr891/metal-rates-service/config"
	"github.com/kedr891/metal-rates-service/internal/bootstrap"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	log := bootstrap.InitLogger(cfg)

	pg := bootstrap.InitPostgres(cfg, log)
	cache, closeCache := bootstrap.InitCache(cfg, log)

	components := bootstrap.InitAPI(cfg, pg, cache, log)

	bootstrap.AppRun(cfg, components, pg, closeCache, log)
}
