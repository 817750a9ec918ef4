package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kedr891/metal-rates-service/internal/entity"
)

func TestMatchesMetal_Gold(t *testing.T) {
	tests := []struct {
		name    string
		product entity.Product
		want    bool
	}{
		{
			name:    "has_gold flag",
			product: entity.Product{HasGold: true},
			want:    true,
		},
		{
			name:    "classification in metal_type",
			product: entity.Product{MetalType: "Gold"},
			want:    true,
		},
		{
			name:    "classification in legacy material_type, lower case",
			product: entity.Product{MaterialType: "gold"},
			want:    true,
		},
		{
			name: "gold tag in line entry only",
			product: entity.Product{
				LineEntries: []entity.LineEntry{{MetalType: "gold"}},
			},
			want: true,
		},
		{
			name:    "platinum product excluded despite gold rate column",
			product: entity.Product{MetalType: "Platinum", GoldRatePerGram: 5800},
			want:    false,
		},
		{
			name:    "platinum in legacy field excluded even with has_gold flag",
			product: entity.Product{MaterialType: "platinum", HasGold: true},
			want:    false,
		},
		{
			name:    "unrelated product",
			product: entity.Product{MetalType: "Silver"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesMetal(&tt.product, entity.MetalGold))
		})
	}
}

func TestMatchesMetal_Platinum(t *testing.T) {
	tests := []struct {
		name    string
		product entity.Product
		want    bool
	}{
		{
			name:    "classification in metal_type",
			product: entity.Product{MetalType: "Platinum"},
			want:    true,
		},
		{
			name:    "classification in material_type, mixed case",
			product: entity.Product{MaterialType: "PLATINUM"},
			want:    true,
		},
		{
			name: "platinum tag in line entry",
			product: entity.Product{
				LineEntries: []entity.LineEntry{{MetalType: "platinum"}},
			},
			want: true,
		},
		{
			name:    "gold flag alone does not match platinum",
			product: entity.Product{HasGold: true},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesMetal(&tt.product, entity.MetalPlatinum))
		})
	}
}

func TestMatchesMetal_Silver(t *testing.T) {
	tests := []struct {
		name    string
		product entity.Product
		want    bool
	}{
		{name: "has_silver flag", product: entity.Product{HasSilver: true}, want: true},
		{name: "exact case classification", product: entity.Product{MetalType: "Silver"}, want: true},
		{name: "lower case classification", product: entity.Product{MaterialType: "silver"}, want: true},
		{
			name:    "silver line entry",
			product: entity.Product{LineEntries: []entity.LineEntry{{MetalType: "Silver"}}},
			want:    true,
		},
		{name: "gold product", product: entity.Product{HasGold: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesMetal(&tt.product, entity.MetalSilver))
		})
	}
}

func TestMatchesMetal_CustomMetalOnlyViaLineEntries(t *testing.T) {
	product := entity.Product{
		MetalType:   "Rose Gold",
		LineEntries: []entity.LineEntry{{MetalType: "rose gold"}},
	}

	assert.True(t, MatchesMetal(&product, entity.MetalType("Rose Gold")))

	// Классификация верхнего уровня произвольным металлом сама по себе
	// не матчит - произвольные металлы живут только в тегах строк.
	noEntries := entity.Product{MetalType: "Rose Gold"}
	assert.False(t, MatchesMetal(&noEntries, entity.MetalType("Rose Gold")))
}

func TestClassify_PlatinumBeforeGold(t *testing.T) {
	// Платиновое изделие с has_gold флагом и курсом в золотой колонке
	// обязано классифицироваться как платина.
	product := entity.Product{
		MetalType:       "Platinum",
		HasGold:         true,
		GoldRatePerGram: 5800,
	}

	assert.Equal(t, entity.MetalPlatinum, Classify(&product))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		product entity.Product
		want    entity.MetalType
	}{
		{name: "gold via flag", product: entity.Product{HasGold: true}, want: entity.MetalGold},
		{name: "gold via legacy field", product: entity.Product{MaterialType: "gold"}, want: entity.MetalGold},
		{name: "silver via flag", product: entity.Product{HasSilver: true}, want: entity.MetalSilver},
		{name: "unclassified", product: entity.Product{}, want: entity.MetalType("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(&tt.product))
		})
	}
}

func TestMatchProducts(t *testing.T) {
	products := []entity.Product{
		{Name: "gold ring", MetalType: "Gold"},
		{Name: "platinum band", MetalType: "Platinum", GoldRatePerGram: 5800},
		{Name: "silver chain", HasSilver: true},
		{Name: "pendant", LineEntries: []entity.LineEntry{{MetalType: "gold"}}},
	}

	matched := MatchProducts(products, entity.MetalGold)

	assert.Len(t, matched, 2)
	assert.Equal(t, "gold ring", matched[0].Name)
	assert.Equal(t, "pendant", matched[1].Name)
}

func TestOwnRateField(t *testing.T) {
	gold := entity.Product{MetalType: "Gold"}
	useGold, useSilver := OwnRateField(&gold, entity.MetalGold)
	assert.True(t, useGold)
	assert.False(t, useSilver)

	// Платина пишет в золотую колонку
	platinum := entity.Product{MetalType: "Platinum"}
	useGold, useSilver = OwnRateField(&platinum, entity.MetalPlatinum)
	assert.True(t, useGold)
	assert.False(t, useSilver)

	silver := entity.Product{HasSilver: true}
	useGold, useSilver = OwnRateField(&silver, entity.MetalSilver)
	assert.False(t, useGold)
	assert.True(t, useSilver)

	// Совпадение только по тегу строки не трогает собственную колонку
	entryOnly := entity.Product{LineEntries: []entity.LineEntry{{MetalType: "Gold"}}}
	useGold, useSilver = OwnRateField(&entryOnly, entity.MetalGold)
	assert.False(t, useGold)
	assert.False(t, useSilver)
}
