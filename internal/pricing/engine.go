package pricing

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mllanos/park-ticket-orders/internal/domain"
)

const (
	Currency = "ARS"

	regularBase = 10000.0
	vipBase     = 18000.0

	freeUnderAge   = 3
	seniorFromAge  = 70
	seniorDiscount = 0.5
)

// Engine prices one visitor for one pass type. Children under 3 enter free
// and visitors aged 70 and over pay half the base price.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Quote(ctx context.Context, visitor domain.Visitor, pass domain.PassType) (domain.PriceQuote, error) {
	var base float64
	switch pass {
	case domain.PassRegular:
		base = regularBase
	case domain.PassVIP:
		base = vipBase
	default:
		return domain.PriceQuote{}, errors.Wrapf(domain.ErrInvalidPassType, "pass type %q", pass)
	}

	amount := base
	switch {
	case visitor.Age < freeUnderAge:
		amount = 0
	case visitor.Age >= seniorFromAge:
		amount = base * seniorDiscount
	}

	return domain.PriceQuote{Amount: amount, Currency: Currency}, nil
}
