package crdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mllanos/park-ticket-orders/internal/adapters/crdb"
	"github.com/mllanos/park-ticket-orders/internal/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRepo(t *testing.T) (*crdb.Repository, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	dsn, err := crdbContainer.Endpoint(ctx, "postgresql")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, dsn+"/park?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	_, err = pool.Exec(ctx, `
		CREATE DATABASE IF NOT EXISTS park;
		CREATE TABLE IF NOT EXISTS park.orders (
			id UUID PRIMARY KEY,
			user_id TEXT,
			user_email TEXT,
			status TEXT CHECK (status IN ('PENDING', 'AWAITING_CASH_PAYMENT', 'PAID')),
			visit_date TIMESTAMPTZ,
			pass_type TEXT,
			payment_method TEXT,
			total FLOAT8,
			paid_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS park.order_lines (
			order_id UUID,
			position INT,
			visitor_name TEXT,
			visitor_age INT,
			price_amount FLOAT8,
			price_currency TEXT,
			PRIMARY KEY (order_id, position)
		);
		CREATE TABLE IF NOT EXISTS park.outbox (
			id UUID PRIMARY KEY,
			aggregate_type TEXT,
			aggregate_id UUID,
			event_type TEXT,
			payload_json BYTES,
			created_at TIMESTAMPTZ DEFAULT now(),
			published_at TIMESTAMPTZ,
			status TEXT,
			dedupe_key TEXT
		);
	`)
	if err != nil {
		t.Fatal(err)
	}

	cleanup := func() {
		pool.Close()
		crdbContainer.Terminate(ctx)
	}
	return crdb.NewRepository(pool), cleanup
}

func testDraft() domain.OrderDraft {
	visitors := []domain.Visitor{
		{Name: "Ana", Age: 25},
		{Name: "Luis", Age: 30},
	}
	lines := make([]domain.OrderLine, len(visitors))
	for i, v := range visitors {
		lines[i] = domain.OrderLine{Visitor: v, Price: domain.PriceQuote{Amount: 10000, Currency: "ARS"}}
	}
	return domain.OrderDraft{
		User:          domain.User{ID: "u-1", Name: "Marco", Email: "marco@example.com"},
		VisitDate:     time.Date(2025, time.October, 21, 0, 0, 0, 0, time.UTC),
		PassType:      domain.PassRegular,
		PaymentMethod: domain.PaymentCard,
		Lines:         lines,
		Total:         20000,
	}
}

func TestRepository_SavePendingAndFind(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	order, err := repo.SavePending(ctx, testDraft(), domain.StatusPending)
	if err != nil {
		t.Fatalf("save pending: %v", err)
	}

	found, err := repo.Find(ctx, order.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil {
		t.Fatal("order not found after save")
	}
	if found.Status != domain.StatusPending {
		t.Errorf("status = %q, want %q", found.Status, domain.StatusPending)
	}
	if len(found.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(found.Lines))
	}
	if found.Lines[0].Visitor.Name != "Ana" || found.Lines[1].Visitor.Name != "Luis" {
		t.Error("line order not preserved")
	}
	if found.Total != 20000 {
		t.Errorf("total = %v, want 20000", found.Total)
	}

	records, err := repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("outbox: %v", err)
	}
	if len(records) != 1 || records[0].EventType != "order.created" {
		t.Errorf("outbox = %+v, want one order.created record", records)
	}
}

func TestRepository_FindUnknownOrder(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	found, err := repo.Find(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if found != nil {
		t.Errorf("found = %+v, want nil", found)
	}
}

func TestRepository_MarkPaidIsGuarded(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	order, err := repo.SavePending(ctx, testDraft(), domain.StatusPending)
	if err != nil {
		t.Fatal(err)
	}

	paidAt := time.Now().UTC().Truncate(time.Second)
	updated, err := repo.MarkPaid(ctx, order.ID, paidAt)
	if err != nil {
		t.Fatal(err)
	}
	if !updated {
		t.Fatal("first MarkPaid should transition the order")
	}

	updated, err = repo.MarkPaid(ctx, order.ID, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if updated {
		t.Error("second MarkPaid should be a no-op")
	}

	found, err := repo.Find(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if found.Status != domain.StatusPaid {
		t.Errorf("status = %q, want %q", found.Status, domain.StatusPaid)
	}
	if found.PaidAt == nil || !found.PaidAt.Equal(paidAt) {
		t.Errorf("paid_at = %v, want %v", found.PaidAt, paidAt)
	}

	records, err := repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	// order.created plus exactly one order.paid
	var paidEvents int
	for _, rec := range records {
		if rec.EventType == "order.paid" {
			paidEvents++
		}
	}
	if paidEvents != 1 {
		t.Errorf("order.paid events = %d, want 1", paidEvents)
	}
}

func TestRepository_DrainOutboxClaimsEachRecordOnce(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := repo.SavePending(ctx, testDraft(), domain.StatusPending); err != nil {
		t.Fatal(err)
	}

	var published []string
	err := repo.DrainOutbox(ctx, 10, func(rec crdb.OutboxRecord) error {
		published = append(published, rec.EventType)
		return nil
	})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(published) != 1 || published[0] != "order.created" {
		t.Fatalf("published = %v, want one order.created", published)
	}

	published = nil
	if err := repo.DrainOutbox(ctx, 10, func(rec crdb.OutboxRecord) error {
		published = append(published, rec.EventType)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(published) != 0 {
		t.Errorf("second drain republished %v", published)
	}
}

func TestRepository_DrainOutboxKeepsRecordsOnPublishFailure(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := repo.SavePending(ctx, testDraft(), domain.StatusPending); err != nil {
		t.Fatal(err)
	}

	brokerDown := errors.New("broker down")
	err := repo.DrainOutbox(ctx, 10, func(rec crdb.OutboxRecord) error {
		return brokerDown
	})
	if !errors.Is(err, brokerDown) {
		t.Fatalf("drain: got %v, want %v", err, brokerDown)
	}

	records, err := repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want the failed record to stay NEW", len(records))
	}

	var published []string
	if err := repo.DrainOutbox(ctx, 10, func(rec crdb.OutboxRecord) error {
		published = append(published, rec.EventType)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(published) != 1 {
		t.Errorf("retry drain published %v, want one record", published)
	}
}

func TestRepository_MarkPaidUnknownOrder(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	_, err := repo.MarkPaid(context.Background(), uuid.New(), time.Now())
	if err == nil {
		t.Fatal("expected error for unknown order")
	}
}
