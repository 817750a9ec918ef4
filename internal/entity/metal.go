package entity

import (
	"strings"
	"time"
)

// MetalType - тип металла, по которому считается цена изделия
type MetalType string

const (
	MetalGold     MetalType = "Gold"
	MetalSilver   MetalType = "Silver"
	MetalPlatinum MetalType = "Platinum"
)

// NormalizeMetalType - привести произвольную строку к каноническому типу металла.
// Неизвестные значения возвращаются как есть: они допустимы в тегах LineEntry.
func NormalizeMetalType(s string) MetalType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gold":
		return MetalGold
	case "silver":
		return MetalSilver
	case "platinum":
		return MetalPlatinum
	default:
		return MetalType(strings.TrimSpace(s))
	}
}

// Equals - регистронезависимое сравнение типов металлов
func (m MetalType) Equals(other string) bool {
	return strings.EqualFold(string(m), strings.TrimSpace(other))
}

// MetalRate - единственная каноническая запись курсов за грамм.
// Одна строка на всю систему; курс 0 означает "не задан".
type MetalRate struct {
	Gold      float64   `json:"gold" db:"gold"`
	Silver    float64   `json:"silver" db:"silver"`
	Platinum  float64   `json:"platinum" db:"platinum"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RateFor - вернуть канонический курс для металла (0, если не задан)
func (r *MetalRate) RateFor(metal MetalType) float64 {
	if r == nil {
		return 0
	}
	switch metal {
	case MetalGold:
		return r.Gold
	case MetalSilver:
		return r.Silver
	case MetalPlatinum:
		return r.Platinum
	default:
		return 0
	}
}

// SetRate - обновить курс одного металла
func (r *MetalRate) SetRate(metal MetalType, rate float64, now time.Time) {
	switch metal {
	case MetalGold:
		r.Gold = rate
	case MetalSilver:
		r.Silver = rate
	case MetalPlatinum:
		r.Platinum = rate
	}
	r.UpdatedAt = now
}

// RateOverrides - набор курсов, передаваемый калькулятору цены.
// Незаполненные значения (0) означают "использовать сохранённый курс изделия".
type RateOverrides struct {
	GoldRate     float64
	SilverRate   float64
	PlatinumRate float64
}
