package pricing

import (
	"github.com/kedr891/metal-rates-service/internal/entity"
)

// WeightBasedCalculator - штатная реализация калькулятора цены:
// вес изделия по курсу металла плюс вложенные строки плюс работа.
// Для ядра калькулятор остаётся непрозрачным коллаборатором; эта
// реализация подменяется в тестах.
type WeightBasedCalculator struct{}

func NewWeightBasedCalculator() *WeightBasedCalculator {
	return &WeightBasedCalculator{}
}

func (c *WeightBasedCalculator) Calculate(p *entity.Product, overrides entity.RateOverrides) float64 {
	base := p.WeightGrams * c.effectiveRate(p, overrides)

	for _, e := range p.LineEntries {
		rate := e.CustomMetalRate
		if rate == 0 {
			rate = c.overrideFor(entity.NormalizeMetalType(e.MetalType), overrides)
		}
		base += e.WeightGrams * rate
	}

	return base + p.MakingCharge
}

// effectiveRate - курс для верхнего уровня изделия: ручной курс, иначе
// переданный override, иначе сохранённая колонка курса
func (c *WeightBasedCalculator) effectiveRate(p *entity.Product, overrides entity.RateOverrides) float64 {
	if p.HasCustomRate() {
		return p.CustomMetalRate
	}

	metal := Classify(p)
	if rate := c.overrideFor(metal, overrides); rate > 0 {
		return rate
	}

	// Платина хранит курс в золотой колонке
	if metal == entity.MetalSilver {
		return p.SilverRatePerGram
	}
	return p.GoldRatePerGram
}

func (c *WeightBasedCalculator) overrideFor(metal entity.MetalType, overrides entity.RateOverrides) float64 {
	switch metal {
	case entity.MetalGold:
		return overrides.GoldRate
	case entity.MetalSilver:
		return overrides.SilverRate
	case entity.MetalPlatinum:
		return overrides.PlatinumRate
	default:
		return 0
	}
}
