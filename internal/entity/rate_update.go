package entity

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки уровня операции смены курса. Хендлер транслирует их
// в коды ответов: валидация -> 400, отсутствие изделий -> 404.
var (
	ErrValidation = errors.New("validation failed")
	ErrNoProducts = errors.New("no products match metal type")
)

// ValidationError - ошибка валидации с именем нарушенного ограничения
func ValidationError(constraint string) error {
	return fmt.Errorf("%w: %s", ErrValidation, constraint)
}

// RateUpdateRequest - запрос оператора на смену курса металла
type RateUpdateRequest struct {
	MetalType string  `json:"metal_type" validate:"required"`
	NewRate   float64 `json:"new_rate" validate:"required,gt=0"`
}

// RateUpdateResult - итог операции смены курса.
// Success отражает, что операция дошла до конца, а не что каждое изделие
// обновилось: авторитетный счётчик успехов - UpdatedCount.
type RateUpdateResult struct {
	Success      bool      `json:"success"`
	UpdatedCount int       `json:"updated_count"`
	MetalType    MetalType `json:"metal_type"`
	NewRate      float64   `json:"new_rate"`
}

// RateUpdateEvent - событие о смене курса для подписчиков (SSE и Kafka)
type RateUpdateEvent struct {
	MetalType    MetalType `json:"metalType"`
	NewRate      float64   `json:"newRate"`
	UpdatedCount int       `json:"updatedCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewRateUpdateEvent - создать событие из итога операции
func NewRateUpdateEvent(result *RateUpdateResult) *RateUpdateEvent {
	return &RateUpdateEvent{
		MetalType:    result.MetalType,
		NewRate:      result.NewRate,
		UpdatedCount: result.UpdatedCount,
		Timestamp:    time.Now(),
	}
}

// MetalRateSummary - агрегированная сводка для публичного чтения курсов
type MetalRateSummary struct {
	Rates         *MetalRate        `json:"rates"`
	ProductCounts map[MetalType]int `json:"product_counts"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
