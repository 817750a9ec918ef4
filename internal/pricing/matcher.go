package pricing

import (
	"github.com/kedr891/metal-rates-service/internal/entity"
)

// Classify - нормализованная классификация изделия по металлу.
//
// Каталог пережил несколько соглашений схемы без миграции, поэтому
// классификация вычисляется один раз из всех унаследованных полей,
// а не повторяется дизъюнкцией по месту вызова.
//
// Платина проверяется раньше золота: платиновые изделия хранят курс
// в колонке gold_rate_per_gram, и без этого приоритета агрегирующее
// чтение посчитало бы их золотыми.
func Classify(p *entity.Product) entity.MetalType {
	if isClassifiedAs(p, entity.MetalPlatinum) {
		return entity.MetalPlatinum
	}
	if p.HasGold || isClassifiedAs(p, entity.MetalGold) {
		return entity.MetalGold
	}
	if p.HasSilver || isClassifiedAs(p, entity.MetalSilver) {
		return entity.MetalSilver
	}
	return ""
}

// isClassifiedAs - совпадает ли одно из двух унаследованных полей
// классификации (регистронезависимо)
func isClassifiedAs(p *entity.Product, metal entity.MetalType) bool {
	return metal.Equals(p.MetalType) || metal.Equals(p.MaterialType)
}

// hasLineEntryWith - есть ли вложенная строка с таким тегом металла
func hasLineEntryWith(p *entity.Product, metal entity.MetalType) bool {
	for _, e := range p.LineEntries {
		if metal.Equals(e.MetalType) {
			return true
		}
	}
	return false
}

// MatchesMetal - зависит ли цена изделия от данного металла.
//
// Правила повторяют поведение исходных обработчиков каталога:
//   - Gold: флаг has_gold, либо классификация "Gold" в любом из двух полей,
//     либо золотой тег в строках; платиновые изделия исключаются, иначе они
//     попали бы в выборку дважды через общую колонку курса.
//   - Platinum: классификация "Platinum" либо платиновый тег в строках.
//   - Silver: флаг has_silver, классификация "Silver" либо серебряный тег.
//   - Прочие металлы существуют только как теги строк.
func MatchesMetal(p *entity.Product, metal entity.MetalType) bool {
	switch entity.NormalizeMetalType(string(metal)) {
	case entity.MetalGold:
		if isClassifiedAs(p, entity.MetalPlatinum) {
			return false
		}
		return p.HasGold ||
			isClassifiedAs(p, entity.MetalGold) ||
			hasLineEntryWith(p, entity.MetalGold)
	case entity.MetalPlatinum:
		return isClassifiedAs(p, entity.MetalPlatinum) ||
			hasLineEntryWith(p, entity.MetalPlatinum)
	case entity.MetalSilver:
		return p.HasSilver ||
			isClassifiedAs(p, entity.MetalSilver) ||
			hasLineEntryWith(p, entity.MetalSilver)
	default:
		return hasLineEntryWith(p, metal)
	}
}

// MatchProducts - отфильтровать изделия, затронутые сменой курса металла.
// Репозиторий делает только грубую предвыборку; авторитетное решение
// принимается здесь.
func MatchProducts(products []entity.Product, metal entity.MetalType) []entity.Product {
	matched := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if MatchesMetal(&p, metal) {
			matched = append(matched, p)
		}
	}
	return matched
}

// OwnRateField - пишется ли новый курс в собственную колонку курса изделия,
// и в какую. Платина использует золотую колонку. Изделие, совпавшее только
// по тегу строки, свою колонку не меняет.
func OwnRateField(p *entity.Product, metal entity.MetalType) (useGoldColumn, useSilverColumn bool) {
	switch entity.NormalizeMetalType(string(metal)) {
	case entity.MetalGold:
		if p.HasGold || isClassifiedAs(p, entity.MetalGold) {
			return true, false
		}
	case entity.MetalPlatinum:
		if isClassifiedAs(p, entity.MetalPlatinum) {
			return true, false
		}
	case entity.MetalSilver:
		if p.HasSilver || isClassifiedAs(p, entity.MetalSilver) {
			return false, true
		}
	}
	return false, false
}
