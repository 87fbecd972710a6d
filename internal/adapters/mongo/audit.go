package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mllanos/park-ticket-orders/internal/domain"
	"github.com/mllanos/park-ticket-orders/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    string    `bson:"user_id"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) logEvent(ctx context.Context, action, userID string, data map[string]interface{}) error {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

func (a *AuditLogger) OrderCreated(ctx context.Context, order domain.Order) error {
	return a.logEvent(ctx, "order.created", order.UserID, map[string]interface{}{
		"order_id":       order.ID,
		"status":         order.Status,
		"visit_date":     order.VisitDate.Format("2006-01-02"),
		"pass_type":      order.PassType,
		"payment_method": order.PaymentMethod,
		"total":          order.Total,
		"tickets":        len(order.Lines),
	})
}

func (a *AuditLogger) OrderPaid(ctx context.Context, order domain.Order) error {
	data := map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.Total,
	}
	if order.PaidAt != nil {
		data["paid_at"] = order.PaidAt.Format(time.RFC3339)
	}
	return a.logEvent(ctx, "order.paid", order.UserID, data)
}
