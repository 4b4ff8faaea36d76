package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalogview/internal/model"
)

var productColumns = []string{
	"run_id", "position", "product_code", "name", "price_min", "price_max",
	"category", "buy_link", "buy_on", "image_url", "created_time", "description",
}

// CatalogRepository keeps a Postgres mirror of the last synced working set.
type CatalogRepository struct {
	DB *pgxpool.Pool
}

// ReplaceAll swaps the mirror for products in one transaction, keeping their order.
func (r *CatalogRepository) ReplaceAll(ctx context.Context, runID uuid.UUID, products []model.Product) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM catalog_products`); err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"catalog_products"}, productColumns, pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
		return productRow(runID, i, products[i]), nil
	}))
	if err != nil {
		return fmt.Errorf("copy products: %w", err)
	}
	if int(n) != len(products) {
		return fmt.Errorf("copy products: wrote %d of %d rows", n, len(products))
	}

	return tx.Commit(ctx)
}

func productRow(runID uuid.UUID, position int, p model.Product) []any {
	// Remove sequências de bytes inválidas para evitar erro de encoding UTF8
	clean := func(s string) string { return strings.ToValidUTF8(s, "") }
	return []any{
		runID, position, clean(p.ProductCode), clean(p.Name), clean(p.PriceMin), clean(p.PriceMax),
		clean(p.Category), clean(p.BuyLink), clean(p.BuyOn), clean(p.ImageURL), clean(p.CreatedTime), clean(p.Description),
	}
}

// List returns the mirrored products in their synced order.
func (r *CatalogRepository) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_code, name, price_min, price_max, category, buy_link, buy_on, image_url, created_time, description
		FROM catalog_products
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ProductCode, &p.Name, &p.PriceMin, &p.PriceMax, &p.Category, &p.BuyLink, &p.BuyOn, &p.ImageURL, &p.CreatedTime, &p.Description); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateImageStatus records the outcome of a link check for every row with code.
func (r *CatalogRepository) UpdateImageStatus(ctx context.Context, code string, ok bool) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE catalog_products
		SET image_ok = $1, checked_at = now()
		WHERE product_code = $2
	`, ok, code)
	return err
}
