package notify

import (
	"context"
	"time"
)

// Dispatcher is the outbound notification sink for the portal. Every send is
// best-effort: callers log failures and move on, and must never invoke a send
// before the transaction that produced it has committed.
type Dispatcher interface {
	SendOrderConfirmation(ctx context.Context, m OrderMail) error
	SendInternalAlert(ctx context.Context, m OrderMail) error
	SendCompletionNotice(ctx context.Context, displayID, email, name string) error
}

type MailLine struct {
	Service   string
	Quantity  int
	Price     float64
	LineTotal float64
}

// OrderMail is the plain data a new-order notification needs.
type OrderMail struct {
	DisplayID string
	Name      string
	Email     string
	Company   string
	Phone     string
	Industry  string
	Country   string
	Lines     []MailLine
	Subtotal  float64
	GST       float64
	Total     float64
}

// Hook is one deferred post-commit action. Hooks own their failures: log and
// continue, never propagate.
type Hook func(ctx context.Context)

// Run executes hooks in order in the calling goroutine.
func Run(ctx context.Context, hooks []Hook) {
	for _, h := range hooks {
		h(ctx)
	}
}

// Go runs hooks detached from the request, with their own deadline, so a slow
// SMTP or broker peer cannot delay the response for committed work.
func Go(hooks []Hook) {
	if len(hooks) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		Run(ctx, hooks)
	}()
}
