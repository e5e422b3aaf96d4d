package stock

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tilldesk/minimart/internal/catalogue"
)

// Postgres keeps the stock list in a products table:
//
//	products(product_no text primary key, description text,
//	         unit_price numeric(12,2), stock int, picture_url text)
type Postgres struct{ DB *pgxpool.Pool }

func (s *Postgres) Exists(ctx context.Context, productNo string) (bool, error) {
	var one int
	err := s.DB.QueryRow(ctx,
		`SELECT 1 FROM products WHERE product_no=$1`, productNo).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Postgres) Details(ctx context.Context, productNo string) (*catalogue.Product, error) {
	var (
		p     catalogue.Product
		price string
	)
	err := s.DB.QueryRow(ctx, `
		SELECT product_no, description, unit_price::text, stock, COALESCE(picture_url,'')
		FROM products WHERE product_no=$1`, productNo).
		Scan(&p.ProductNo, &p.Description, &price, &p.Quantity, &p.PictureURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.UnitPrice, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) Search(ctx context.Context, terms string) ([]*catalogue.Product, error) {
	fields := strings.Fields(terms)
	if len(fields) == 0 {
		return nil, nil
	}
	patterns := make([]string, 0, len(fields))
	for _, f := range fields {
		patterns = append(patterns, "%"+f+"%")
	}

	rows, err := s.DB.Query(ctx, `
		SELECT product_no, description, unit_price::text, stock, COALESCE(picture_url,'')
		FROM products
		WHERE description ILIKE ANY($1)
		ORDER BY product_no`, patterns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*catalogue.Product
	for rows.Next() {
		var (
			p     catalogue.Product
			price string
		)
		if err := rows.Scan(&p.ProductNo, &p.Description, &price, &p.Quantity, &p.PictureURL); err != nil {
			return nil, err
		}
		if p.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Reserve locks the product row, checks the level and decrements in one tx,
// so two simultaneous buyers cannot both take the last unit.
func (s *Postgres) Reserve(ctx context.Context, productNo string, qty int) (bool, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var level int
	err = tx.QueryRow(ctx,
		`SELECT stock FROM products WHERE product_no=$1 FOR UPDATE`, productNo).Scan(&level)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if level < qty {
		return false, nil // rollback via defer
	}
	if _, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE product_no=$1`, productNo, qty); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *Postgres) Return(ctx context.Context, productNo string, qty int) error {
	ct, err := s.DB.Exec(ctx,
		`UPDATE products SET stock = stock + $2 WHERE product_no=$1`, productNo, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
