package pricing

import (
	"time"

	"github.com/kedr891/metal-rates-service/internal/domain"
	"github.com/kedr891/metal-rates-service/internal/entity"
)

// ApplyRate - пересчитать изделие под новый курс металла.
//
// Изменяет переданную копию изделия и возвращает её же:
//   - поля цены (price, subtotal, total) пересчитываются всегда, даже если
//     изделие совпало только по тегу вложенной строки;
//   - собственная колонка курса обновляется только если изделие типизировано
//     этим металлом (платина пишет в золотую колонку);
//   - ручной курс изделия заменяется только у изделий, типизированных этим
//     металлом, и только если прежде был не задан либо равен прежнему
//     каноническому курсу; ручные курсы строк - по тому же правилу, но по
//     совпадению тега строки. Расходящийся ручной курс оператор задал
//     намеренно, массовая смена его не трогает.
func ApplyRate(
	p *entity.Product,
	metal entity.MetalType,
	newRate, prevRate float64,
	calc domain.PriceCalculator,
	now time.Time,
) *entity.Product {
	useGold, useSilver := OwnRateField(p, metal)
	if useGold {
		p.GoldRatePerGram = newRate
	}
	if useSilver {
		p.SilverRatePerGram = newRate
	}

	// Ручной курс верхнего уровня принадлежит металлу самого изделия.
	// Изделие, совпавшее только по тегу строки, сравнивать нельзя:
	// его ручной курс задан в чужом металле, и прежний канонический
	// курс для него не ориентир.
	if (useGold || useSilver) && shouldReplaceCustomRate(p.CustomMetalRate, prevRate) {
		p.CustomMetalRate = newRate
	}

	for i, e := range p.LineEntries {
		if !metal.Equals(e.MetalType) {
			continue
		}
		if shouldReplaceCustomRate(e.CustomMetalRate, prevRate) {
			p.LineEntries[i].CustomMetalRate = newRate
		}
	}

	price := calc.Calculate(p, overridesFor(metal, newRate))
	p.Price = price
	p.Subtotal = price
	p.Total = price
	p.UpdatedAt = now

	return p
}

// shouldReplaceCustomRate - инвариант сохранения ручного курса:
// заменяем только незаданный (0) или всё ещё равный прежнему каноническому.
func shouldReplaceCustomRate(current, prevCanonical float64) bool {
	return current == 0 || current == prevCanonical
}

// overridesFor - какие курсы передать калькулятору
func overridesFor(metal entity.MetalType, rate float64) entity.RateOverrides {
	switch entity.NormalizeMetalType(string(metal)) {
	case entity.MetalGold:
		return entity.RateOverrides{GoldRate: rate}
	case entity.MetalSilver:
		return entity.RateOverrides{SilverRate: rate}
	case entity.MetalPlatinum:
		return entity.RateOverrides{PlatinumRate: rate}
	default:
		return entity.RateOverrides{}
	}
}
