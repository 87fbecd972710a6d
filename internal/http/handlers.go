package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mllanos/park-ticket-orders/internal/adapters/crdb"
	redisadapter "github.com/mllanos/park-ticket-orders/internal/adapters/redis"
	"github.com/mllanos/park-ticket-orders/internal/config"
	"github.com/mllanos/park-ticket-orders/internal/domain"
	"github.com/mllanos/park-ticket-orders/internal/idempotency"
	"github.com/mllanos/park-ticket-orders/internal/purchase"
)

const orderCacheTTL = 30 * time.Second

type Handlers struct {
	cfg   *config.Config
	svc   *purchase.Service
	repo  *crdb.Repository
	cache *redisadapter.Cache
	idemp *idempotency.Idempotency
}

func NewHandlers(cfg *config.Config, svc *purchase.Service, repo *crdb.Repository, cache *redisadapter.Cache, idemp *idempotency.Idempotency) *Handlers {
	return &Handlers{
		cfg:   cfg,
		svc:   svc,
		repo:  repo,
		cache: cache,
		idemp: idemp,
	}
}

type purchaseRequest struct {
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	VisitDate   string `json:"visit_date"`
	TicketCount int    `json:"ticket_count"`
	Visitors    []struct {
		Name string `json:"name"`
		Age  *int   `json:"age"`
	} `json:"visitors"`
	PassType      string `json:"pass_type"`
	PaymentMethod string `json:"payment_method"`
}

// parsePurchase decodes the request body into a service-level request. A
// visitor entry without an age field is incomplete; the pointer decode is
// what tells a missing age apart from an explicit age of 0.
func parsePurchase(body io.Reader) (purchase.PurchaseRequest, error) {
	var req purchaseRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return purchase.PurchaseRequest{}, err
	}

	visitDate, err := time.Parse("2006-01-02", req.VisitDate)
	if err != nil {
		return purchase.PurchaseRequest{}, errors.New("invalid visit_date")
	}

	visitors := make([]domain.Visitor, len(req.Visitors))
	for i, v := range req.Visitors {
		if v.Age == nil {
			return purchase.PurchaseRequest{}, domain.ErrIncompleteVisitorData
		}
		visitors[i] = domain.Visitor{Name: v.Name, Age: *v.Age}
	}

	return purchase.PurchaseRequest{
		User:          domain.User{ID: req.User.ID, Name: req.User.Name, Email: req.User.Email},
		VisitDate:     visitDate,
		TicketCount:   req.TicketCount,
		Visitors:      visitors,
		PassType:      domain.PassType(req.PassType),
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}, nil
}

func (h *Handlers) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	preq, err := parsePurchase(r.Body)
	if err != nil {
		if errors.Is(err, domain.ErrIncompleteVisitorData) {
			writeError(w, err)
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	result, err := h.svc.Purchase(r.Context(), preq)
	if err != nil {
		writeError(w, err)
		return
	}

	data, _ := json.Marshal(result)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(data)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})
}

func (h *Handlers) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID       uuid.UUID `json:"order_id"`
		Status        string    `json:"status"`
		TransactionID string    `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !purchase.Approved(req.Status) {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	receipt, err := h.svc.ConfirmPayment(r.Context(), purchase.PaymentNotification{
		OrderID:       req.OrderID,
		Status:        req.Status,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.cache.InvalidateOrder(r.Context(), req.OrderID.String())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ticket_count": receipt.TicketCount,
		"visit_date":   receipt.VisitDate.Format("2006-01-02"),
	})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if cached, err := h.cache.GetOrderJSON(r.Context(), idStr); err == nil && cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	order, err := h.repo.Find(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if order == nil {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	lines := make([]map[string]interface{}, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = map[string]interface{}{
			"visitor":  map[string]interface{}{"name": line.Visitor.Name, "age": line.Visitor.Age},
			"amount":   line.Price.Amount,
			"currency": line.Price.Currency,
		}
	}
	resp := map[string]interface{}{
		"order_id":       order.ID,
		"status":         order.Status,
		"visit_date":     order.VisitDate.Format("2006-01-02"),
		"pass_type":      order.PassType,
		"payment_method": order.PaymentMethod,
		"lines":          lines,
		"total":          order.Total,
	}
	data, _ := json.Marshal(resp)

	h.cache.SetOrderJSON(r.Context(), idStr, data, orderCacheTTL)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotRegistered):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrParkClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrTicketCountExceeded),
		errors.Is(err, domain.ErrTicketCountTooLow),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidPassType),
		errors.Is(err, domain.ErrIncompleteVisitorData),
		errors.Is(err, domain.ErrAgeOutOfRange),
		errors.Is(err, domain.ErrVisitorCountMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrSerializationFailure):
		http.Error(w, "conflict, try again", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
