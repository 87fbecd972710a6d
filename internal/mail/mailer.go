package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mllanos/park-ticket-orders/internal/domain"
)

// Mailer sends the purchase confirmation over plain SMTP.
type Mailer struct {
	addr string
	from string
}

func NewMailer(addr, from string) *Mailer {
	return &Mailer{addr: addr, from: from}
}

func (m *Mailer) SendConfirmation(ctx context.Context, order domain.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", order.UserEmail)
	fmt.Fprintf(&b, "Subject: Purchase confirmation #%s\r\n", order.ID)
	b.WriteString("\r\n")
	b.WriteString("Your purchase has been confirmed.\r\n\r\n")
	fmt.Fprintf(&b, "Order: %s\r\n", order.ID)
	fmt.Fprintf(&b, "Visit date: %s\r\n", order.VisitDate.Format("2006-01-02"))
	b.WriteString("\r\nTickets:\r\n")
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "- %s pass: %s (age %d) - %.2f %s\r\n",
			order.PassType, line.Visitor.Name, line.Visitor.Age, line.Price.Amount, line.Price.Currency)
	}
	fmt.Fprintf(&b, "\r\nTotal: %.2f\r\n", order.Total)
	b.WriteString("\r\nSee you at the park!\r\n")

	return smtp.SendMail(m.addr, nil, m.from, []string{order.UserEmail}, []byte(b.String()))
}
