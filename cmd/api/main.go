package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mllanos/park-ticket-orders/internal/adapters/crdb"
	mongoadapter "github.com/mllanos/park-ticket-orders/internal/adapters/mongo"
	redisadapter "github.com/mllanos/park-ticket-orders/internal/adapters/redis"
	"github.com/mllanos/park-ticket-orders/internal/config"
	"github.com/mllanos/park-ticket-orders/internal/domain"
	httphandler "github.com/mllanos/park-ticket-orders/internal/http"
	"github.com/mllanos/park-ticket-orders/internal/idempotency"
	"github.com/mllanos/park-ticket-orders/internal/mail"
	"github.com/mllanos/park-ticket-orders/internal/observability"
	"github.com/mllanos/park-ticket-orders/internal/payment"
	"github.com/mllanos/park-ticket-orders/internal/pricing"
	"github.com/mllanos/park-ticket-orders/internal/purchase"
	"github.com/mllanos/park-ticket-orders/internal/ratelimit"
	"github.com/mllanos/park-ticket-orders/internal/schedule"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

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
	mongoDB := mongoClient.Database("park")
	audit := mongoadapter.NewAuditLogger(mongoDB, logger)

	cal := loadCalendar(mongoadapter.NewHolidayCatalog(mongoDB, logger), logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, cfg.IdempotencyTTL)
	rl := ratelimit.NewRateLimiter(redisCache)

	svc := purchase.NewService(
		domain.RulesByName(cfg.RuleProfile),
		cal,
		pricing.NewEngine(),
		repo,
		payment.NewGateway(cfg.GatewayBaseURL),
		mail.NewMailer(cfg.SMTPAddr, cfg.MailFrom),
		purchase.SystemClock{},
		audit,
		logger,
	)

	handlers := httphandler.NewHandlers(cfg, svc, repo, redisCache, idemp)
	r := httphandler.SetupRouter(handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown Server ...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
	logger.Info("Server exiting")
}

// loadCalendar reads the holiday catalog once at start; the embedded
// default set is the fallback when the catalog is empty or unreachable.
func loadCalendar(catalog *mongoadapter.HolidayCatalog, logger observability.Logger) *schedule.Calendar {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	holidays, err := catalog.LoadAll(ctx)
	if err != nil || len(holidays) == 0 {
		logger.Warn("holiday catalog unavailable, using embedded holiday set")
		holidays = schedule.DefaultHolidays()
	}
	return schedule.NewCalendar(holidays)
}
