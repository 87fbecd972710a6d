package crdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mllanos/park-ticket-orders/internal/domain"
	"github.com/mllanos/park-ticket-orders/internal/observability"
)

const (
	SerializationFailureCode = "40001"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	defer func() {
		observability.DBTxDuration.Observe(time.Since(start).Seconds())
	}()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

// SavePending persists a priced draft as a new order with the given
// initial status and records an order.created outbox event in the same
// transaction.
func (r *Repository) SavePending(ctx context.Context, draft domain.OrderDraft, status string) (domain.Order, error) {
	order := domain.Order{
		ID:            uuid.New(),
		UserID:        draft.User.ID,
		UserEmail:     draft.User.Email,
		Status:        status,
		VisitDate:     draft.VisitDate,
		PassType:      draft.PassType,
		PaymentMethod: draft.PaymentMethod,
		Lines:         draft.Lines,
		Total:         draft.Total,
		CreatedAt:     time.Now(),
	}

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, user_id, user_email, status, visit_date, pass_type, payment_method, total, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, order.ID, order.UserID, order.UserEmail, order.Status, order.VisitDate, order.PassType, order.PaymentMethod, order.Total, order.CreatedAt)
		if err != nil {
			return err
		}

		// pgx transactions are not safe for concurrent use, so the
		// lines go in one by one.
		for i, line := range order.Lines {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_lines (order_id, position, visitor_name, visitor_age, price_amount, price_currency)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, order.ID, i, line.Visitor.Name, line.Visitor.Age, line.Price.Amount, line.Price.Currency)
			if err != nil {
				return err
			}
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"order_id":   order.ID,
			"status":     order.Status,
			"visit_date": order.VisitDate.Format("2006-01-02"),
			"total":      order.Total,
		})
		return r.InsertOutbox(ctx, tx, OutboxRecord{
			ID:            uuid.New(),
			AggregateType: "order",
			AggregateID:   order.ID,
			EventType:     "order.created",
			Payload:       payload,
			DedupeKey:     uuid.New().String(),
		})
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// Find returns nil without error when no order exists for the id.
func (r *Repository) Find(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, user_email, status, visit_date, pass_type, payment_method, total, paid_at, created_at
		FROM orders WHERE id = $1
	`, orderID).Scan(&order.ID, &order.UserID, &order.UserEmail, &order.Status, &order.VisitDate,
		&order.PassType, &order.PaymentMethod, &order.Total, &order.PaidAt, &order.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT visitor_name, visitor_age, price_amount, price_currency
		FROM order_lines WHERE order_id = $1 ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.Visitor.Name, &line.Visitor.Age, &line.Price.Amount, &line.Price.Currency); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	return &order, rows.Err()
}

// MarkPaid transitions the order to PAID. The guarded UPDATE makes a
// second confirmation a no-op: it reports false and writes nothing.
func (r *Repository) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error) {
	var updated bool
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE orders SET status = $2, paid_at = $3
			WHERE id = $1 AND status <> $2
		`, orderID, domain.StatusPaid, paidAt)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domain.ErrOrderNotFound
			}
			return nil
		}
		updated = true

		payload, _ := json.Marshal(map[string]interface{}{
			"order_id": orderID,
			"status":   domain.StatusPaid,
			"paid_at":  paidAt.Format(time.RFC3339),
		})
		return r.InsertOutbox(ctx, tx, OutboxRecord{
			ID:            uuid.New(),
			AggregateType: "order",
			AggregateID:   orderID,
			EventType:     "order.paid",
			Payload:       payload,
			DedupeKey:     uuid.New().String(),
		})
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}
