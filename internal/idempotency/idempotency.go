package idempotency

import (
	"context"
	"time"

	redisadapter "github.com/mllanos/park-ticket-orders/internal/adapters/redis"
)

// Idempotency replays stored responses for repeated purchase POSTs that
// carry the same Idempotency-Key.
type Idempotency struct {
	store *redisadapter.Idempotency
	ttl   time.Duration
}

func NewIdempotency(store *redisadapter.Idempotency, ttl time.Duration) *Idempotency {
	return &Idempotency{store: store, ttl: ttl}
}

type Response struct {
	Status int
	Result []byte
}

func (i *Idempotency) Get(ctx context.Context, key string) (*Response, error) {
	stored, err := i.store.Get(ctx, key)
	if err != nil || stored == nil {
		return nil, err
	}
	return &Response{Status: stored.Status, Result: stored.Result}, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp Response) error {
	return i.store.Set(ctx, key, redisadapter.IdempResponse{Status: resp.Status, Result: resp.Result}, i.ttl)
}
