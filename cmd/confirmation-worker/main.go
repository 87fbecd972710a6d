package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mllanos/park-ticket-orders/internal/adapters/crdb"
	mongoadapter "github.com/mllanos/park-ticket-orders/internal/adapters/mongo"
	"github.com/mllanos/park-ticket-orders/internal/adapters/rabbit"
	redisadapter "github.com/mllanos/park-ticket-orders/internal/adapters/redis"
	"github.com/mllanos/park-ticket-orders/internal/config"
	"github.com/mllanos/park-ticket-orders/internal/domain"
	"github.com/mllanos/park-ticket-orders/internal/mail"
	"github.com/mllanos/park-ticket-orders/internal/observability"
	"github.com/mllanos/park-ticket-orders/internal/payment"
	"github.com/mllanos/park-ticket-orders/internal/pricing"
	"github.com/mllanos/park-ticket-orders/internal/purchase"
	"github.com/mllanos/park-ticket-orders/internal/schedule"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	audit := mongoadapter.NewAuditLogger(mongoClient.Database("park"), logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, rabbit.PaymentsQueue)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	svc := purchase.NewService(
		domain.RulesByName(cfg.RuleProfile),
		schedule.NewCalendar(schedule.DefaultHolidays()),
		pricing.NewEngine(),
		repo,
		payment.NewGateway(cfg.GatewayBaseURL),
		mail.NewMailer(cfg.SMTPAddr, cfg.MailFrom),
		purchase.SystemClock{},
		audit,
		logger,
	)

	worker := NewConfirmationWorker(svc, consumer, redisCache, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := worker.Run(ctx); err != nil {
			logger.Error("worker stopped: ", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown confirmation worker")
}

// ConfirmationWorker turns payment-provider notifications into order
// confirmations.
type ConfirmationWorker struct {
	svc      *purchase.Service
	consumer *rabbit.Consumer
	cache    *redisadapter.Cache
	logger   observability.Logger
}

func NewConfirmationWorker(svc *purchase.Service, consumer *rabbit.Consumer, cache *redisadapter.Cache, logger observability.Logger) *ConfirmationWorker {
	return &ConfirmationWorker{svc: svc, consumer: consumer, cache: cache, logger: logger}
}

type paymentNotification struct {
	OrderID       uuid.UUID `json:"order_id"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
}

func (w *ConfirmationWorker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Consume(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *ConfirmationWorker) handle(ctx context.Context, d amqp.Delivery) {
	var n paymentNotification
	if err := json.Unmarshal(d.Body, &n); err != nil {
		w.logger.Error("bad notification payload: ", err)
		d.Nack(false, false)
		return
	}

	// ConfirmPayment itself does not branch on provider status; drop
	// non-approved notifications here, with the same filter the HTTP
	// callback applies.
	if !purchase.Approved(n.Status) {
		d.Ack(false)
		return
	}

	if err := w.confirmWithRetry(ctx, n); err != nil {
		w.logger.WithField("order_id", n.OrderID).Error("confirmation failed: ", err)
		d.Nack(false, !errors.Is(err, domain.ErrOrderNotFound))
		return
	}

	w.cache.InvalidateOrder(ctx, n.OrderID.String())
	d.Ack(false)
}

func (w *ConfirmationWorker) confirmWithRetry(ctx context.Context, n paymentNotification) error {
	maxRetries := 3
	var err error
	for i := 0; i < maxRetries; i++ {
		_, err = w.svc.ConfirmPayment(ctx, purchase.PaymentNotification{
			OrderID:       n.OrderID,
			Status:        n.Status,
			TransactionID: n.TransactionID,
		})
		if err == nil || errors.Is(err, domain.ErrOrderNotFound) {
			return err
		}
		backoff := time.Duration(1<<i) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
