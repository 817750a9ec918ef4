package service

import (
	"context"

	"github.com/kedr891/metal-rates-service/internal/domain"
)

// sideEffect - один вторичный эффект после основной операции
type sideEffect struct {
	name string
	run  func(ctx context.Context) error
}

// runSideEffects - выполнить вторичные эффекты независимо друг от друга.
// Сбой каждого логируется изолированно и никогда не влияет ни на соседние
// эффекты, ни на итог основной операции.
func runSideEffects(ctx context.Context, log domain.Logger, effects ...sideEffect) {
	for _, effect := range effects {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error("side effect panicked", "effect", effect.name, "panic", r)
				}
			}()

			if err := effect.run(ctx); err != nil {
				log.Warn("side effect failed", "effect", effect.name, "error", err)
			}
		}()
	}
}
