package orders

import (
	"context"
	"errors"
	"time"

	"github.com/anatechlabs/sample-portal/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// OrderKey identifies a freshly inserted order. CreatedAt is the persisted
// timestamp the display id is derived from.
type OrderKey struct {
	ID        int64
	CreatedAt time.Time
}

// CreateOrder persists the order, its line items, and the initial payment row
// in one transaction. Any failure rolls back all three tables.
func (r *Repo) CreateOrder(ctx context.Context, sub *Submission) (OrderKey, error) {
	return postgres.WithinTx(ctx, r.DB, func(tx pgx.Tx) (OrderKey, error) {
		var key OrderKey
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (customer_name, customer_email, company_name, phone, address,
			                    industry, classification, country, state,
			                    subtotal, gst, total_amount, payment_status, status, order_status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
			RETURNING id, created_at`,
			sub.FullName, sub.Email, sub.CompanyName, sub.Phone, sub.Address,
			sub.Industry, sub.Classification, sub.Country, sub.State,
			sub.Subtotal, sub.GST, sub.FinalTotal, "success", string(StatusPending),
		).Scan(&key.ID, &key.CreatedAt)
		if err != nil {
			return key, err
		}
		if key.ID == 0 {
			return key, ErrNoOrderID
		}

		for _, ln := range sub.Services {
			lineTotal := ln.Price * float64(ln.Quantity)
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, service_name, quantity, price, price_per_sample, line_total)
				VALUES ($1,$2,$3,$4,$4,$5)`,
				key.ID, ln.Service, ln.Quantity, ln.Price, lineTotal)
			if err != nil {
				return key, err
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO payments (order_id, method, status, amount, reference)
			VALUES ($1,$2,$3,$4,$5)`,
			key.ID, "manual", "success", sub.FinalTotal, "")
		if err != nil {
			return key, err
		}
		return key, nil
	})
}

// TransitionStatus moves an order to a new status with a row lock held across
// the read and write, appending one audit row per real transition. A request
// for the current status is a no-op: Changed stays false and nothing is
// written.
func (r *Repo) TransitionStatus(ctx context.Context, orderID int64, to Status, actor string) (TransitionResult, error) {
	return postgres.WithinTx(ctx, r.DB, func(tx pgx.Tx) (TransitionResult, error) {
		var tr TransitionResult
		var cur string
		err := tx.QueryRow(ctx, `
			SELECT status, customer_name, customer_email, created_at
			FROM orders WHERE id=$1 FOR UPDATE`, orderID).
			Scan(&cur, &tr.CustomerName, &tr.CustomerEmail, &tr.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return tr, ErrNotFound
		}
		if err != nil {
			return tr, err
		}
		tr.OldStatus = Status(cur)
		if tr.OldStatus == to {
			return tr, nil
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, order_status=$2 WHERE id=$1`,
			orderID, string(to)); err != nil {
			return tr, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO status_audit (order_id, old_status, new_status, changed_by)
			VALUES ($1,$2,$3,$4)`,
			orderID, string(tr.OldStatus), string(to), actor); err != nil {
			return tr, err
		}
		tr.Changed = true
		return tr, nil
	})
}

// OrderDetail is the order with its owned rows, for the detail view.
type OrderDetail struct {
	Order   Order
	Items   []LineItem
	Payment *Payment
}

func (r *Repo) GetOrder(ctx context.Context, orderID int64) (*OrderDetail, error) {
	var d OrderDetail
	o := &d.Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, customer_name, customer_email, company_name, phone, address,
		       industry, classification, country, state,
		       subtotal, gst, total_amount, payment_status, status, order_status, created_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CompanyName, &o.Phone, &o.Address,
			&o.Industry, &o.Classification, &o.Country, &o.State,
			&o.Subtotal, &o.GST, &o.TotalAmount, &o.PaymentStatus, &o.Status, &o.OrderStatus, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, service_name, quantity, price, line_total
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ServiceName, &it.Quantity, &it.Price, &it.LineTotal); err != nil {
			return nil, err
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var p Payment
	err = r.DB.QueryRow(ctx, `
		SELECT id, order_id, method, status, amount, reference, created_at
		FROM payments WHERE order_id=$1 ORDER BY id LIMIT 1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.Method, &p.Status, &p.Amount, &p.Reference, &p.CreatedAt)
	if err == nil {
		d.Payment = &p
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID int64) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}
