package domain

import (
	"context"
	"time"
)

// PricingEngine produces a quote for one visitor and pass type. Quotes are
// immutable once attached to an order line.
type PricingEngine interface {
	Quote(ctx context.Context, visitor Visitor, pass PassType) (PriceQuote, error)
}

// BuildDraft prices every visitor in input order and assembles the draft.
// len(Lines) always equals len(visitors) and Total is the exact sum of the
// line amounts.
func BuildDraft(ctx context.Context, user User, visitDate time.Time, visitors []Visitor, pass PassType, method PaymentMethod, engine PricingEngine) (OrderDraft, error) {
	lines := make([]OrderLine, 0, len(visitors))
	var total float64
	for _, v := range visitors {
		quote, err := engine.Quote(ctx, v, pass)
		if err != nil {
			return OrderDraft{}, err
		}
		lines = append(lines, OrderLine{Visitor: v, Price: quote})
		total += quote.Amount
	}
	return OrderDraft{
		User:          user,
		VisitDate:     visitDate,
		PassType:      pass,
		PaymentMethod: method,
		Lines:         lines,
		Total:         total,
	}, nil
}
