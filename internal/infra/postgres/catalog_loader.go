package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"academy-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads catalog item JSONB from Postgres. Content authoring
// writes these rows; this side only reads.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadItem(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM catalog_items WHERE id=$1`, itemID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CatalogItem{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("load catalog item: %w", err)
	}
	var item domain.CatalogItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("unmarshal catalog item: %w", err)
	}
	return item, nil
}

func (l *CatalogLoader) LoadByGrade(ctx context.Context, grade string) ([]domain.CatalogItem, error) {
	query := `SELECT data FROM catalog_items ORDER BY id`
	args := []interface{}{}
	if grade != "" {
		query = `SELECT data FROM catalog_items WHERE data->>'grade'=$1 ORDER BY id`
		args = append(args, grade)
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CatalogItem, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		var item domain.CatalogItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal catalog item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
