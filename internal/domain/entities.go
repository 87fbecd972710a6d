package domain

import (
	"time"

	"github.com/google/uuid"
)

type PassType string

const (
	PassRegular PassType = "REGULAR"
	PassVIP     PassType = "VIP"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

const (
	StatusPending             = "PENDING"
	StatusAwaitingCashPayment = "AWAITING_CASH_PAYMENT"
	StatusPaid                = "PAID"
)

// User is owned by the identity layer; the purchase flow only reads it.
// A user with an empty ID is not registered.
type User struct {
	ID    string
	Name  string
	Email string
}

// Visitor lives only for the duration of a single purchase request.
type Visitor struct {
	Name string
	Age  int
}

type PriceQuote struct {
	Amount   float64
	Currency string
}

type OrderLine struct {
	Visitor Visitor
	Price   PriceQuote
}

// OrderDraft is a fully priced, unpersisted order. It exists only to be
// handed to the repository.
type OrderDraft struct {
	User          User
	VisitDate     time.Time
	PassType      PassType
	PaymentMethod PaymentMethod
	Lines         []OrderLine
	Total         float64
}

type Order struct {
	ID            uuid.UUID
	UserID        string
	UserEmail     string
	Status        string
	VisitDate     time.Time
	PassType      PassType
	PaymentMethod PaymentMethod
	Lines         []OrderLine
	Total         float64
	PaidAt        *time.Time
	CreatedAt     time.Time
}
