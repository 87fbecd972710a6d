package purchase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mllanos/park-ticket-orders/internal/domain"
)

// ScheduleProvider is the authoritative open/closed check for the purchase
// pipeline. It may fold the weekly closure and holiday rules internally.
type ScheduleProvider interface {
	IsOpen(ctx context.Context, date time.Time) (bool, error)
}

type OrderRepository interface {
	// SavePending persists a draft with the given initial status and
	// returns the stored order.
	SavePending(ctx context.Context, draft domain.OrderDraft, status string) (domain.Order, error)
	Find(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// MarkPaid transitions an order to PAID. It reports false when the
	// order was already paid, making re-confirmation a no-op.
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
}

// PaymentRouter starts external card flows and returns the redirect handle.
type PaymentRouter interface {
	StartCardFlow(ctx context.Context, order domain.Order) (string, error)
}

type Mailer interface {
	SendConfirmation(ctx context.Context, order domain.Order) error
}

type Clock interface {
	Now() time.Time
}

// Audit records purchase lifecycle events. Failures are logged and never
// fail the purchase.
type Audit interface {
	OrderCreated(ctx context.Context, order domain.Order) error
	OrderPaid(ctx context.Context, order domain.Order) error
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
