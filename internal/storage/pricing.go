package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
)

// PriceFilter narrows ListPrices. Empty fields match everything.
type PriceFilter struct {
	Customer string
	Product  string
}

type priceRow struct {
	CustomerName string          `db:"customer_name"`
	ProductName  string          `db:"product_name"`
	Price        decimal.Decimal `db:"price"`
	LastUpdated  string          `db:"last_updated"`
}

// EnsureCustomers inserts the names not yet known and returns how many
// were added. Blank names are ignored.
func (r *SQLiteRepository) EnsureCustomers(ctx context.Context, names []string) (int, error) {
	added := 0
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, `INSERT OR IGNORE INTO customers (customer_name) VALUES (?)`)
		if err != nil {
			return fmt.Errorf("prepare customer insert: %w", err)
		}
		defer stmt.Close()
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			res, err := stmt.ExecContext(ctx, name)
			if err != nil {
				return fmt.Errorf("insert customer %q: %w", name, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (r *SQLiteRepository) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	customers := []core.Customer{}
	if err := r.db.SelectContext(ctx, &customers, `SELECT customer_id, customer_name FROM customers ORDER BY customer_name`); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// UpsertPrice sets the price a customer pays for a product.
func (r *SQLiteRepository) UpsertPrice(ctx context.Context, customer, product string, price decimal.Decimal) (core.Price, error) {
	at := r.now()
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		customerID, err := lookupID(ctx, tx, `SELECT customer_id FROM customers WHERE customer_name = ?`, customer, core.ErrCustomerNotFound)
		if err != nil {
			return err
		}
		productID, err := lookupID(ctx, tx, `SELECT product_id FROM products WHERE product_name = ?`, product, core.ErrProductNotFound)
		if err != nil {
			return err
		}
		const q = `
			INSERT INTO prices (customer_id, product_id, price, last_updated)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (customer_id, product_id) DO UPDATE SET
				price = excluded.price,
				last_updated = excluded.last_updated`
		if _, err := tx.ExecContext(ctx, q, customerID, productID, price.String(), formatTime(at)); err != nil {
			return fmt.Errorf("upsert price: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Price{}, err
	}
	r.logger.InfoContext(ctx, "Price updated",
		applog.FieldCustomer, customer,
		applog.FieldProduct, product,
		"price", price.String())
	return core.Price{CustomerName: customer, ProductName: product, Price: price, LastUpdated: parseTime(formatTime(at))}, nil
}

func (r *SQLiteRepository) ListPrices(ctx context.Context, f PriceFilter) ([]core.Price, error) {
	q := `
		SELECT c.customer_name, p.product_name, pr.price, pr.last_updated
		FROM prices pr
		JOIN customers c ON c.customer_id = pr.customer_id
		JOIN products p ON p.product_id = pr.product_id
		WHERE 1 = 1`
	var args []any
	if f.Customer != "" {
		q += ` AND c.customer_name = ?`
		args = append(args, f.Customer)
	}
	if f.Product != "" {
		q += ` AND p.product_name = ?`
		args = append(args, f.Product)
	}
	q += ` ORDER BY c.customer_name, p.product_name`

	var rows []priceRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	out := make([]core.Price, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Price{
			CustomerName: row.CustomerName,
			ProductName:  row.ProductName,
			Price:        row.Price,
			LastUpdated:  parseTime(row.LastUpdated),
		})
	}
	return out, nil
}

func lookupID(ctx context.Context, q sqlx.QueryerContext, query, name string, notFound error) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", notFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %q: %w", name, err)
	}
	return id, nil
}
