package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"gasdash/internal/core"
)

type inventoryRow struct {
	ProductID   int64  `db:"product_id"`
	ProductName string `db:"product_name"`
	Quantity    int64  `db:"quantity"`
	LastUpdated string `db:"last_updated"`
}

// EnsureProduct inserts the product if missing and returns it.
func (r *SQLiteRepository) EnsureProduct(ctx context.Context, name string) (core.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Product{}, core.ErrEmptyName
	}
	var p core.Product
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO products (product_name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("insert product %q: %w", name, err)
		}
		return tx.GetContext(ctx, &p, `SELECT product_id, product_name FROM products WHERE product_name = ?`, name)
	})
	if err != nil {
		return core.Product{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]core.Product, error) {
	products := []core.Product{}
	if err := r.db.SelectContext(ctx, &products, `SELECT product_id, product_name FROM products ORDER BY product_name`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// SetInventory records the stocked quantity of a product.
func (r *SQLiteRepository) SetInventory(ctx context.Context, product string, quantity int64) (core.InventoryLevel, error) {
	at := r.now()
	var level core.InventoryLevel
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := lookupID(ctx, tx, `SELECT product_id FROM products WHERE product_name = ?`, product, core.ErrProductNotFound)
		if err != nil {
			return err
		}
		const q = `
			INSERT INTO inventory (product_id, quantity, last_updated)
			VALUES (?, ?, ?)
			ON CONFLICT (product_id) DO UPDATE SET
				quantity = excluded.quantity,
				last_updated = excluded.last_updated`
		if _, err := tx.ExecContext(ctx, q, id, quantity, formatTime(at)); err != nil {
			return fmt.Errorf("upsert inventory: %w", err)
		}
		level = core.InventoryLevel{ProductID: id, ProductName: product, Quantity: quantity, LastUpdated: parseTime(formatTime(at))}
		return nil
	})
	if err != nil {
		return core.InventoryLevel{}, err
	}
	return level, nil
}

func (r *SQLiteRepository) ListInventory(ctx context.Context) ([]core.InventoryLevel, error) {
	const q = `
		SELECT p.product_id, p.product_name, i.quantity, i.last_updated
		FROM inventory i
		JOIN products p ON p.product_id = i.product_id
		ORDER BY p.product_name`
	var rows []inventoryRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	out := make([]core.InventoryLevel, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.InventoryLevel{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			LastUpdated: parseTime(row.LastUpdated),
		})
	}
	return out, nil
}

// InsertSales stores sales, skipping any whose source_ref is already
// present, and returns how many were new.
func (r *SQLiteRepository) InsertSales(ctx context.Context, sales []core.Sale) (int, error) {
	inserted := 0
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, `
			INSERT OR IGNORE INTO sales (product_id, quantity, sale_date, vehicle, source_ref)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare sale insert: %w", err)
		}
		defer stmt.Close()
		for _, s := range sales {
			res, err := stmt.ExecContext(ctx, s.ProductID, s.Quantity, s.Date.String(), s.Vehicle.String(), s.SourceRef)
			if err != nil {
				return fmt.Errorf("insert sale %s: %w", s.SourceRef, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Remaining returns the stocked quantity of a product minus everything sold.
// A product without an inventory record counts as zero stock.
func (r *SQLiteRepository) Remaining(ctx context.Context, product string) (int64, error) {
	id, err := lookupID(ctx, r.db, `SELECT product_id FROM products WHERE product_name = ?`, product, core.ErrProductNotFound)
	if err != nil {
		return 0, err
	}
	const q = `
		SELECT
			COALESCE((SELECT quantity FROM inventory WHERE product_id = ?), 0) -
			COALESCE((SELECT SUM(quantity) FROM sales WHERE product_id = ?), 0)`
	var remaining int64
	if err := r.db.GetContext(ctx, &remaining, q, id, id); err != nil {
		return 0, fmt.Errorf("remaining inventory for %q: %w", product, err)
	}
	return remaining, nil
}
