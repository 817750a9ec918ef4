package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product - ювелирное изделие каталога.
//
// Классификация по металлу исторически хранится в нескольких местах сразу:
// поле metal_type, старое поле material_type (другой регистр значений),
// булевы флаги has_gold/has_silver и теги вложенных строк LineEntries.
// Ни одно из них не является единственным источником истины - matcher
// обязан учитывать все одновременно.
//
// Платиновые изделия хранят свой курс в колонке gold_rate_per_gram.
// Это унаследованная особенность схемы, а не проектное решение; весь код,
// читающий и пишущий курс платины, обязан её сохранять.
type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	SKU          string    `json:"sku" db:"sku"`
	MetalType    string    `json:"metal_type" db:"metal_type"`
	MaterialType string    `json:"material_type" db:"material_type"`
	HasGold      bool      `json:"has_gold" db:"has_gold"`
	HasSilver    bool      `json:"has_silver" db:"has_silver"`

	GoldRatePerGram   float64 `json:"gold_rate_per_gram" db:"gold_rate_per_gram"`
	SilverRatePerGram float64 `json:"silver_rate_per_gram" db:"silver_rate_per_gram"`

	// CustomMetalRate - ручной курс изделия; 0 означает "не задан".
	CustomMetalRate float64 `json:"custom_metal_rate" db:"custom_metal_rate"`

	WeightGrams  float64 `json:"weight_grams" db:"weight_grams"`
	MakingCharge float64 `json:"making_charge" db:"making_charge"`

	Price    float64 `json:"price" db:"price"`
	Subtotal float64 `json:"subtotal" db:"subtotal"`
	Total    float64 `json:"total" db:"total"`

	LineEntries []LineEntry `json:"line_entries" db:"line_entries"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LineEntry - вложенная строка изделия: одна комбинация камень/металл.
// Каждая строка тарифицируется независимо и может нести собственный
// ручной курс.
type LineEntry struct {
	MetalType       string  `json:"metal_type"`
	StoneType       string  `json:"stone_type,omitempty"`
	WeightGrams     float64 `json:"weight_grams"`
	CustomMetalRate float64 `json:"custom_metal_rate"`
}

// HasCustomRate - задан ли ручной курс строки
func (e LineEntry) HasCustomRate() bool {
	return e.CustomMetalRate > 0
}

// HasCustomRate - задан ли ручной курс изделия
func (p *Product) HasCustomRate() bool {
	return p.CustomMetalRate > 0
}
