package orders

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	kafkax "github.com/anatechlabs/sample-portal/internal/kafka"
	"github.com/anatechlabs/sample-portal/internal/notify"
	"github.com/anatechlabs/sample-portal/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MaxQuantity bounds samples per service line.
const MaxQuantity = 100

// totalTolerance: client totals are currency floats; agree to the cent.
const totalTolerance = 0.01

type ServiceLine struct {
	Service  string  `json:"service"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Submission struct {
	FullName       string        `json:"fullName"`
	CompanyName    string        `json:"companyName,omitempty"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	Address        string        `json:"address"`
	Industry       string        `json:"industry"`
	Classification string        `json:"classification"`
	Country        string        `json:"country"`
	State          string        `json:"state"`
	Services       []ServiceLine `json:"services"`
	Subtotal       float64       `json:"subtotal"`
	GST            float64       `json:"gst"`
	FinalTotal     float64       `json:"finalTotal"`
}

type SubmitResult struct {
	OrderID   int64
	DisplayID string
}

// OrderCreator is the atomic persistence step: order + items + payment, all
// or nothing.
type OrderCreator interface {
	CreateOrder(ctx context.Context, sub *Submission) (OrderKey, error)
}

// EventPublisher enqueues one lifecycle event. Delivery is best-effort and
// asynchronous.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// SubmissionService turns a sample-submission payload into a durable order
// and returns the display order id plus the post-commit notification hooks.
// Producer and Redis may be nil (the hook is skipped).
type SubmissionService struct {
	Store    OrderCreator
	Mail     notify.Dispatcher
	Producer EventPublisher
	Redis    *redis.Client
	Prefix   string
	Service  string // producer name stamped on events
	Log      *zap.Logger
}

// Submit validates, persists atomically, and returns the result together
// with the deferred post-commit actions. Hooks must only run after this
// returns nil: the store has committed by then, and each hook swallows its
// own failure so a dead SMTP peer never fails an already-durable order.
func (s *SubmissionService) Submit(ctx context.Context, sub *Submission) (*SubmitResult, []notify.Hook, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, nil, err
	}

	key, err := s.Store.CreateOrder(ctx, sub)
	if err != nil {
		return nil, nil, fmt.Errorf("create order: %w", err)
	}

	res := &SubmitResult{OrderID: key.ID, DisplayID: DisplayID(s.Prefix, key.CreatedAt, key.ID)}
	return res, s.submitHooks(sub, key, res.DisplayID), nil
}

func validateSubmission(sub *Submission) error {
	if strings.TrimSpace(sub.FullName) == "" || strings.TrimSpace(sub.Email) == "" {
		return fmt.Errorf("%w: fullName and email are required", ErrInvalidSubmission)
	}
	for _, ln := range sub.Services {
		if strings.TrimSpace(ln.Service) == "" {
			return fmt.Errorf("%w: service name is required", ErrInvalidSubmission)
		}
		if ln.Quantity < 1 || ln.Quantity > MaxQuantity {
			return fmt.Errorf("%w: quantity for %q must be between 1 and %d", ErrInvalidSubmission, ln.Service, MaxQuantity)
		}
		if ln.Price < 0 {
			return fmt.Errorf("%w: price for %q must not be negative", ErrInvalidSubmission, ln.Service)
		}
	}
	if math.Abs(sub.Subtotal+sub.GST-sub.FinalTotal) > totalTolerance {
		return fmt.Errorf("%w: subtotal + gst must equal finalTotal", ErrInvalidSubmission)
	}
	return nil
}

func (s *SubmissionService) submitHooks(sub *Submission, key OrderKey, displayID string) []notify.Hook {
	var hooks []notify.Hook

	if s.Mail != nil {
		m := orderMail(sub, displayID)
		hooks = append(hooks, func(ctx context.Context) {
			if err := s.Mail.SendOrderConfirmation(ctx, m); err != nil {
				s.Log.Warn("order confirmation mail failed",
					zap.Int64("order_id", key.ID), zap.String("to", m.Email), zap.Error(err))
			}
		})
		hooks = append(hooks, func(ctx context.Context) {
			if err := s.Mail.SendInternalAlert(ctx, m); err != nil {
				s.Log.Warn("internal order alert failed",
					zap.Int64("order_id", key.ID), zap.Error(err))
			}
		})
	}

	if s.Producer != nil {
		hooks = append(hooks, s.submittedEventHook(sub, key, displayID))
	}

	if s.Redis != nil {
		hooks = append(hooks, func(ctx context.Context) {
			statusKey := fmt.Sprintf(redisx.KeyOrderStatus, key.ID)
			if err := s.Redis.Set(ctx, statusKey, string(StatusPending), redisx.TTLStatusCache).Err(); err != nil {
				s.Log.Warn("status cache seed failed", zap.Int64("order_id", key.ID), zap.Error(err))
			}
		})
	}

	return hooks
}

func (s *SubmissionService) submittedEventHook(sub *Submission, key OrderKey, displayID string) notify.Hook {
	items := make([]SubmittedItem, 0, len(sub.Services))
	for _, ln := range sub.Services {
		items = append(items, SubmittedItem{
			Service:   ln.Service,
			Quantity:  ln.Quantity,
			Price:     ln.Price,
			LineTotal: ln.Price * float64(ln.Quantity),
		})
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderSubmitted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		CorrelationID: strconv.FormatInt(key.ID, 10),
		Payload: kafkax.MustMarshal(OrderSubmittedPayload{
			OrderID:       key.ID,
			DisplayID:     displayID,
			CustomerEmail: sub.Email,
			Subtotal:      sub.Subtotal,
			GST:           sub.GST,
			Total:         sub.FinalTotal,
			Items:         items,
		}),
	}
	value := kafkax.MustMarshal(ev)
	return func(ctx context.Context) {
		s.Producer.Publish(PartitionKey(key.ID), value,
			kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderSubmitted)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
}

func orderMail(sub *Submission, displayID string) notify.OrderMail {
	lines := make([]notify.MailLine, 0, len(sub.Services))
	for _, ln := range sub.Services {
		lines = append(lines, notify.MailLine{
			Service:   ln.Service,
			Quantity:  ln.Quantity,
			Price:     ln.Price,
			LineTotal: ln.Price * float64(ln.Quantity),
		})
	}
	return notify.OrderMail{
		DisplayID: displayID,
		Name:      sub.FullName,
		Email:     sub.Email,
		Company:   sub.CompanyName,
		Phone:     sub.Phone,
		Industry:  sub.Industry,
		Country:   sub.Country,
		Lines:     lines,
		Subtotal:  sub.Subtotal,
		GST:       sub.GST,
		Total:     sub.FinalTotal,
	}
}
