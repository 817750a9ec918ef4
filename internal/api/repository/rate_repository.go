package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kedr891/metal-rates-service/internal/domain"
	"github.com/kedr891/metal-rates-service/internal/entity"
	"github.com/kedr891/metal-rates-service/pkg/postgres"
)

// Таблица metal_rates держит ровно одну строку (id = 1) на весь каталог.
const _rateSingletonID = 1

type rateRepository struct {
	pg *postgres.Postgres
}

func NewRateRepository(pg *postgres.Postgres) domain.RateRepository {
	return &rateRepository{pg: pg}
}

// Get - прочитать каноническую запись курсов; nil без ошибки, если её ещё нет
func (r *rateRepository) Get(ctx context.Context) (*entity.MetalRate, error) {
	sql, args, err := r.pg.Builder.
		Select("gold", "silver", "platinum", "updated_at").
		From("metal_rates").
		Where("id = ?", _rateSingletonID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("rateRepository - Get - build query: %w", err)
	}

	var rate entity.MetalRate
	err = r.pg.Pool.QueryRow(ctx, sql, args...).
		Scan(&rate.Gold, &rate.Silver, &rate.Platinum, &rate.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rateRepository - Get - query row: %w", err)
	}

	return &rate, nil
}

// Set - записать курс одного металла в единственную запись.
// Создаёт запись с нулевыми остальными курсами, если её ещё нет;
// иначе обновляет ровно одну колонку плюс updated_at. Last-write-wins,
// транзакционных гарантий сверх этого не требуется.
func (r *rateRepository) Set(ctx context.Context, metal entity.MetalType, rate float64, now time.Time) (*entity.MetalRate, error) {
	column, err := rateColumn(metal)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		INSERT INTO metal_rates (id, %[1]s, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET %[1]s = EXCLUDED.%[1]s, updated_at = EXCLUDED.updated_at
		RETURNING gold, silver, platinum, updated_at
	`, column)

	var updated entity.MetalRate
	err = r.pg.Pool.QueryRow(ctx, sql, _rateSingletonID, rate, now).
		Scan(&updated.Gold, &updated.Silver, &updated.Platinum, &updated.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("rateRepository - Set - upsert: %w", err)
	}

	return &updated, nil
}

func rateColumn(metal entity.MetalType) (string, error) {
	switch entity.NormalizeMetalType(string(metal)) {
	case entity.MetalGold:
		return "gold", nil
	case entity.MetalSilver:
		return "silver", nil
	case entity.MetalPlatinum:
		return "platinum", nil
	default:
		return "", fmt.Errorf("rateRepository - no canonical column for metal %q", metal)
	}
}
