package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tilldesk/minimart/internal/catalogue"
)

// Postgres keeps the order queue in two tables plus a sequence:
//
//	CREATE SEQUENCE order_numbers;
//	orders(order_no bigint primary key, status text, total numeric(12,2),
//	       created_at timestamptz default now())
//	order_lines(order_no bigint references orders, product_no text,
//	            description text, unit_price numeric(12,2), qty int,
//	            picture_url text)
type Postgres struct{ DB *pgxpool.Pool }

func (r *Postgres) AllocateNumber(ctx context.Context) (int64, error) {
	var no int64
	err := r.DB.QueryRow(ctx, `SELECT nextval('order_numbers')`).Scan(&no)
	return no, err
}

func (r *Postgres) Submit(ctx context.Context, b *catalogue.Basket) error {
	if b.OrderNo() == 0 {
		return ErrNoOrderNumber
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(order_no, status, total)
		VALUES ($1, $2, $3)`,
		b.OrderNo(), StatusWaiting, b.TotalPrice()); err != nil {
		return err
	}
	for _, p := range b.Lines() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(order_no, product_no, description, unit_price, qty, picture_url)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			b.OrderNo(), p.ProductNo, p.Description, p.UnitPrice, p.Quantity, p.PictureURL); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// NextToPack takes the oldest waiting order and flips it to PACKING inside
// one tx, so an order is handed out at most once even with several pollers.
func (r *Postgres) NextToPack(ctx context.Context) (*catalogue.Basket, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var no int64
	err = tx.QueryRow(ctx, `
		SELECT order_no FROM orders
		WHERE status=$1
		ORDER BY created_at, order_no
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, StatusWaiting).Scan(&no)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT product_no, description, unit_price::text, qty, COALESCE(picture_url,'')
		FROM order_lines WHERE order_no=$1`, no)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	b := catalogue.NewBasket()
	b.SetOrderNo(no)
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
		b.Add(&p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status=$2 WHERE order_no=$1`, no, StatusPacking); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Postgres) MarkPacked(ctx context.Context, orderNo int64) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2
		WHERE order_no=$1 AND status=$3`, orderNo, StatusPacked, StatusPacking)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrUnknownOrder
	}
	return nil
}
