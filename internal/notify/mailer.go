package notify

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends the portal's three transactional emails over SMTP.
type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
	// Inbox receives the internal new-order alert.
	Inbox string
}

var _ Dispatcher = (*Mailer)(nil)

func (m *Mailer) SendOrderConfirmation(_ context.Context, om OrderMail) error {
	subject := fmt.Sprintf("Order %s received", om.DisplayID)
	return m.send(om.Email, subject, confirmationBody(om))
}

func (m *Mailer) SendInternalAlert(_ context.Context, om OrderMail) error {
	subject := fmt.Sprintf("New sample submission %s", om.DisplayID)
	return m.send(m.Inbox, subject, alertBody(om))
}

func (m *Mailer) SendCompletionNotice(_ context.Context, displayID, email, name string) error {
	subject := fmt.Sprintf("Order %s completed", displayID)
	body := fmt.Sprintf(
		"Dear %s,\n\nTesting for order %s is complete. Your results are ready.\n\nAnatech Laboratories\n",
		name, displayID)
	return m.send(email, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	return d.DialAndSend(msg)
}

func confirmationBody(om OrderMail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\nWe received your sample submission. Your order number is %s.\n\n", om.Name, om.DisplayID)
	writeLines(&b, om)
	b.WriteString("\nWe will contact you once your samples are scheduled for testing.\n\nAnatech Laboratories\n")
	return b.String()
}

func alertBody(om OrderMail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n\nCustomer: %s <%s>\n", om.DisplayID, om.Name, om.Email)
	if om.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", om.Company)
	}
	if om.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", om.Phone)
	}
	if om.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", om.Industry)
	}
	if om.Country != "" {
		fmt.Fprintf(&b, "Country: %s\n", om.Country)
	}
	b.WriteString("\n")
	writeLines(&b, om)
	return b.String()
}

func writeLines(b *strings.Builder, om OrderMail) {
	for _, ln := range om.Lines {
		fmt.Fprintf(b, "  %s x%d @ %.2f = %.2f\n", ln.Service, ln.Quantity, ln.Price, ln.LineTotal)
	}
	fmt.Fprintf(b, "\nSubtotal: %.2f\nGST: %.2f\nTotal: %.2f\n", om.Subtotal, om.GST, om.Total)
}
