package crdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Status        string // NEW, PUBLISHED, FAILED
	DedupeKey     string
}

const outboxColumns = `id, aggregate_type, aggregate_id, event_type, payload_json, created_at, published_at, status, dedupe_key`

func (r *Repository) InsertOutbox(ctx context.Context, tx pgx.Tx, record OutboxRecord) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload_json, status, dedupe_key)
		VALUES ($1, $2, $3, $4, $5, 'NEW', $6)
	`, record.ID, record.AggregateType, record.AggregateID, record.EventType, record.Payload, record.DedupeKey)
	return err
}

// GetUnpublishedOutbox is a plain read of pending records; it takes no
// locks. Draining goes through DrainOutbox.
func (r *Repository) GetUnpublishedOutbox(ctx context.Context, limit int) ([]OutboxRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox WHERE status = 'NEW' ORDER BY created_at ASC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanOutbox(rows)
}

// DrainOutbox claims a batch of NEW records and hands each to publish,
// marking it published on success. The claim and the marks share one
// transaction, so the row locks hold until commit and a concurrent drain
// cannot pick up the same records. A publish failure rolls the whole batch
// back; the records stay NEW for the next tick.
func (r *Repository) DrainOutbox(ctx context.Context, limit int, publish func(OutboxRecord) error) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+outboxColumns+`
			FROM outbox WHERE status = 'NEW' ORDER BY created_at ASC LIMIT $1 FOR UPDATE SKIP LOCKED
		`, limit)
		if err != nil {
			return err
		}
		records, err := scanOutbox(rows)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := publish(rec); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `
				UPDATE outbox SET status = 'PUBLISHED', published_at = $2 WHERE id = $1
			`, rec.ID, time.Now())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func scanOutbox(rows pgx.Rows) ([]OutboxRecord, error) {
	defer rows.Close()

	var records []OutboxRecord
	for rows.Next() {
		var rec OutboxRecord
		err := rows.Scan(&rec.ID, &rec.AggregateType, &rec.AggregateID, &rec.EventType, &rec.Payload, &rec.CreatedAt, &rec.PublishedAt, &rec.Status, &rec.DedupeKey)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
