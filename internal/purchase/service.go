package purchase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mllanos/park-ticket-orders/internal/domain"
	"github.com/mllanos/park-ticket-orders/internal/observability"
)

// CashInstructions directs the payer to settle in person at the box office.
const CashInstructions = "Pay for your tickets in person at the park box office (boletería) on the day of your visit."

type PurchaseRequest struct {
	User          domain.User
	VisitDate     time.Time
	TicketCount   int
	Visitors      []domain.Visitor
	PassType      domain.PassType
	PaymentMethod domain.PaymentMethod
}

type PurchaseResult struct {
	OrderID      uuid.UUID `json:"order_id"`
	Status       string    `json:"status"`
	RedirectURL  string    `json:"redirect_url,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
}

// PaymentNotification is the payload of a payment-provider callback. The
// caller decides which provider statuses count as approved; the handler
// itself only needs the order identity.
type PaymentNotification struct {
	OrderID       uuid.UUID
	Status        string
	TransactionID string
}

// Approved reports whether a provider payment status counts as an approved
// payment. Every notification path, HTTP callback and queue consumer alike,
// filters through this before calling ConfirmPayment.
func Approved(status string) bool {
	switch strings.ToUpper(status) {
	case "APPROVED", "SUCCEEDED", "APROBADO":
		return true
	}
	return false
}

type Receipt struct {
	TicketCount int       `json:"ticket_count"`
	VisitDate   time.Time `json:"visit_date"`
}

type Service struct {
	rules    domain.Rules
	schedule ScheduleProvider
	pricing  domain.PricingEngine
	repo     OrderRepository
	router   PaymentRouter
	mailer   Mailer
	clock    Clock
	audit    Audit
	logger   observability.Logger
}

func NewService(
	rules domain.Rules,
	schedule ScheduleProvider,
	pricing domain.PricingEngine,
	repo OrderRepository,
	router PaymentRouter,
	mailer Mailer,
	clock Clock,
	audit Audit,
	logger observability.Logger,
) *Service {
	return &Service{
		rules:    rules,
		schedule: schedule,
		pricing:  pricing,
		repo:     repo,
		router:   router,
		mailer:   mailer,
		clock:    clock,
		audit:    audit,
		logger:   logger,
	}
}

// Purchase runs the validation gates in order, short-circuiting on the
// first failure. No side effects happen before every gate has passed.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (PurchaseResult, error) {
	if err := s.validate(ctx, req); err != nil {
		observability.ValidationFailuresTotal.WithLabelValues(err.Error()).Inc()
		return PurchaseResult{}, err
	}

	draft, err := domain.BuildDraft(ctx, req.User, req.VisitDate, req.Visitors, req.PassType, req.PaymentMethod, s.pricing)
	if err != nil {
		return PurchaseResult{}, errors.Wrap(err, "build draft")
	}

	status := domain.StatusPending
	if req.PaymentMethod == domain.PaymentCash {
		status = domain.StatusAwaitingCashPayment
	}

	order, err := s.repo.SavePending(ctx, draft, status)
	if err != nil {
		return PurchaseResult{}, errors.Wrap(err, "save pending order")
	}

	if s.audit != nil {
		if err := s.audit.OrderCreated(ctx, order); err != nil {
			s.logger.WithField("order_id", order.ID).Warn("audit order.created failed: ", err)
		}
	}

	result := PurchaseResult{OrderID: order.ID, Status: order.Status}
	switch req.PaymentMethod {
	case domain.PaymentCash:
		result.Instructions = CashInstructions
	default:
		// Gate 3 already rejected anything that is not CASH or CARD;
		// the default card flow is the degenerate fallback.
		url, err := s.router.StartCardFlow(ctx, order)
		if err != nil {
			return PurchaseResult{}, errors.Wrap(err, "start card flow")
		}
		result.RedirectURL = url
	}

	observability.PurchasesTotal.WithLabelValues(string(req.PaymentMethod), "accepted").Inc()
	return result, nil
}

func (s *Service) validate(ctx context.Context, req PurchaseRequest) error {
	if err := domain.ValidateRegisteredUser(req.User); err != nil {
		return err
	}
	if err := s.rules.CheckTicketCount(req.TicketCount); err != nil {
		return err
	}
	if err := domain.ValidatePaymentMethod(req.PaymentMethod); err != nil {
		return err
	}
	if err := domain.ValidatePassType(req.PassType); err != nil {
		return err
	}
	if err := s.rules.CheckVisitors(req.TicketCount, req.Visitors); err != nil {
		return err
	}
	if err := s.rules.CheckNotPast(req.VisitDate, s.clock.Now()); err != nil {
		return err
	}
	open, err := s.schedule.IsOpen(ctx, req.VisitDate)
	if err != nil {
		return errors.Wrap(err, "schedule check")
	}
	if !open {
		return domain.ErrParkClosed
	}
	return nil
}

// ConfirmPayment marks an order paid and sends the confirmation mail. Mail
// delivery failure does not revert the paid state: payment confirmation is
// authoritative over notification delivery. Confirming an already paid
// order is a no-op that sends no second mail.
func (s *Service) ConfirmPayment(ctx context.Context, n PaymentNotification) (Receipt, error) {
	order, err := s.repo.Find(ctx, n.OrderID)
	if err != nil {
		return Receipt{}, err
	}
	if order == nil {
		return Receipt{}, domain.ErrOrderNotFound
	}

	paidAt := s.clock.Now()
	updated, err := s.repo.MarkPaid(ctx, order.ID, paidAt)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "mark paid")
	}

	if updated {
		order.Status = domain.StatusPaid
		order.PaidAt = &paidAt
		if err := s.mailer.SendConfirmation(ctx, *order); err != nil {
			observability.MailFailuresTotal.Inc()
			s.logger.WithField("order_id", order.ID).Error("confirmation mail failed: ", err)
		}
		if s.audit != nil {
			if err := s.audit.OrderPaid(ctx, *order); err != nil {
				s.logger.WithField("order_id", order.ID).Warn("audit order.paid failed: ", err)
			}
		}
		observability.PaymentCallbacksTotal.WithLabelValues("paid").Inc()
	} else {
		observability.PaymentCallbacksTotal.WithLabelValues("already_paid").Inc()
	}

	return Receipt{TicketCount: len(order.Lines), VisitDate: order.VisitDate}, nil
}
