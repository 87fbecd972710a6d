package outbox

import (
	"context"
	"time"

	"github.com/mllanos/park-ticket-orders/internal/adapters/crdb"
	"github.com/mllanos/park-ticket-orders/internal/adapters/rabbit"
	"github.com/mllanos/park-ticket-orders/internal/observability"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher drains NEW outbox records to the events exchange.
type Publisher struct {
	repo      *crdb.Repository
	rabbitPub *rabbit.Publisher
	logger    observability.Logger
}

func NewPublisher(repo *crdb.Repository, rabbitPub *rabbit.Publisher, logger observability.Logger) *Publisher {
	return &Publisher{repo: repo, rabbitPub: rabbitPub, logger: logger}
}

func (p *Publisher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

func (p *Publisher) drain(ctx context.Context) {
	err := p.repo.DrainOutbox(ctx, 100, func(rec crdb.OutboxRecord) error {
		msg := amqp.Publishing{
			MessageId:   rec.DedupeKey,
			ContentType: "application/json",
			Body:        rec.Payload,
		}
		if err := p.rabbitPub.Publish(ctx, rec.EventType, msg); err != nil {
			return err
		}
		observability.OutboxLag.Set(time.Since(rec.CreatedAt).Seconds())
		return nil
	})
	if err != nil {
		p.logger.Error("outbox drain failed: ", err)
	}
}
