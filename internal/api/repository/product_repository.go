package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kedr891/metal-rates-service/internal/domain"
	"github.com/kedr891/metal-rates-service/internal/entity"
	"github.com/kedr891/metal-rates-service/pkg/postgres"
)

var _productColumns = []string{
	"id", "name", "sku",
	"metal_type", "material_type",
	"has_gold", "has_silver",
	"gold_rate_per_gram", "silver_rate_per_gram", "custom_metal_rate",
	"weight_grams", "making_charge",
	"price", "subtotal", "total",
	"line_entries",
	"created_at", "updated_at",
}

type productRepository struct {
	pg *postgres.Postgres
}

func NewProductRepository(pg *postgres.Postgres) domain.ProductRepository {
	return &productRepository{pg: pg}
}

// GetProductsByMetal - грубая предвыборка изделий-кандидатов для металла.
// Условия намеренно шире правил матчинга (ILIKE по двум унаследованным
// полям классификации, флаги, JSONB-тег строк); точное решение за
// pricing.MatchProducts.
func (r *productRepository) GetProductsByMetal(ctx context.Context, metal entity.MetalType) ([]entity.Product, error) {
	metalName := string(entity.NormalizeMetalType(string(metal)))

	// Тег в line_entries проверяется по нормализованному значению:
	// старые записи встречаются в разном регистре.
	entryTag := squirrel.Expr(
		`EXISTS (
			SELECT 1 FROM jsonb_array_elements(line_entries) AS entry
			WHERE lower(entry->>'metal_type') = lower(?)
		)`, metalName,
	)

	conditions := squirrel.Or{
		squirrel.Expr("lower(metal_type) = lower(?)", metalName),
		squirrel.Expr("lower(material_type) = lower(?)", metalName),
		entryTag,
	}

	switch entity.NormalizeMetalType(string(metal)) {
	case entity.MetalGold:
		conditions = append(conditions, squirrel.Eq{"has_gold": true})
	case entity.MetalSilver:
		conditions = append(conditions, squirrel.Eq{"has_silver": true})
	}

	sql, args, err := r.pg.Builder.
		Select(_productColumns...).
		From("products").
		Where(conditions).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("productRepository - GetProductsByMetal - build query: %w", err)
	}

	return r.queryProducts(ctx, sql, args...)
}

func (r *productRepository) GetAllProducts(ctx context.Context) ([]entity.Product, error) {
	sql, args, err := r.pg.Builder.
		Select(_productColumns...).
		From("products").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("productRepository - GetAllProducts - build query: %w", err)
	}

	return r.queryProducts(ctx, sql, args...)
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	sql, args, err := r.pg.Builder.
		Select(_productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("productRepository - GetProductByID - build query: %w", err)
	}

	rows, err := r.pg.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("productRepository - GetProductByID - query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("productRepository - GetProductByID - rows: %w", err)
		}
		return nil, fmt.Errorf("productRepository - GetProductByID: %w", pgx.ErrNoRows)
	}

	product, err := scanProduct(rows)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProductPricing - сохранить пересчитанные поля одного изделия.
// Каждое изделие сохраняется независимо; общей транзакции на батч нет.
func (r *productRepository) UpdateProductPricing(ctx context.Context, product *entity.Product) error {
	entries, err := marshalLineEntries(product.LineEntries)
	if err != nil {
		return fmt.Errorf("productRepository - UpdateProductPricing - marshal line entries: %w", err)
	}

	sql, args, err := r.pg.Builder.
		Update("products").
		Set("gold_rate_per_gram", product.GoldRatePerGram).
		Set("silver_rate_per_gram", product.SilverRatePerGram).
		Set("custom_metal_rate", product.CustomMetalRate).
		Set("price", product.Price).
		Set("subtotal", product.Subtotal).
		Set("total", product.Total).
		Set("line_entries", entries).
		Set("updated_at", product.UpdatedAt).
		Where(squirrel.Eq{"id": product.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("productRepository - UpdateProductPricing - build query: %w", err)
	}

	tag, err := r.pg.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("productRepository - UpdateProductPricing - exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("productRepository - UpdateProductPricing: product not found")
	}

	return nil
}

func (r *productRepository) queryProducts(ctx context.Context, sql string, args ...interface{}) ([]entity.Product, error) {
	rows, err := r.pg.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("productRepository - query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("productRepository - iterate products: %w", err)
	}

	return products, nil
}

func scanProduct(rows pgx.Rows) (*entity.Product, error) {
	var (
		p       entity.Product
		entries []byte
	)

	err := rows.Scan(
		&p.ID, &p.Name, &p.SKU,
		&p.MetalType, &p.MaterialType,
		&p.HasGold, &p.HasSilver,
		&p.GoldRatePerGram, &p.SilverRatePerGram, &p.CustomMetalRate,
		&p.WeightGrams, &p.MakingCharge,
		&p.Price, &p.Subtotal, &p.Total,
		&entries,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("productRepository - scan product: %w", err)
	}

	if len(entries) > 0 && strings.TrimSpace(string(entries)) != "null" {
		if err := json.Unmarshal(entries, &p.LineEntries); err != nil {
			return nil, fmt.Errorf("productRepository - unmarshal line entries: %w", err)
		}
	}

	return &p, nil
}

func marshalLineEntries(entries []entity.LineEntry) ([]byte, error) {
	if entries == nil {
		entries = []entity.LineEntry{}
	}
	return json.Marshal(entries)
}
