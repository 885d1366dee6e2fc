package orders

import (
	"context"
	"fmt"
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

type ChangeInput struct {
	OrderID   int64
	NewStatus string
	// Actor is the authenticated administrator. Passed in explicitly; the
	// service never reads ambient request state.
	Actor string
}

type ChangeResult struct {
	Changed   bool
	OldStatus Status
	NewStatus Status
}

// TransitionResult is what the store hands back from one transition attempt.
// Changed=false with nil error means the order already had the requested
// status and nothing was written.
type TransitionResult struct {
	Changed       bool
	OldStatus     Status
	CustomerName  string
	CustomerEmail string
	CreatedAt     time.Time
}

// StatusStore performs the locked read-compare-write-audit unit atomically.
type StatusStore interface {
	TransitionStatus(ctx context.Context, orderID int64, to Status, actor string) (TransitionResult, error)
}

// TransitionService guards order status changes: whitelist validation before
// any database work, atomic transition with audit, and the completion notice
// gated on reaching Completed.
type TransitionService struct {
	Store    StatusStore
	Mail     notify.Dispatcher
	Producer EventPublisher
	Redis    *redis.Client
	Prefix   string
	Service  string
	Log      *zap.Logger
}

// ChangeStatus applies one status change and returns the result plus the
// post-commit hooks. A no-op change returns Changed=false and no hooks at
// all: no audit row was written, so nothing may fire.
func (s *TransitionService) ChangeStatus(ctx context.Context, in ChangeInput) (*ChangeResult, []notify.Hook, error) {
	if strings.TrimSpace(in.Actor) == "" {
		return nil, nil, ErrUnauthorized
	}
	if in.OrderID <= 0 {
		return nil, nil, fmt.Errorf("%w: orderId", ErrMissingField)
	}
	if in.NewStatus == "" {
		return nil, nil, fmt.Errorf("%w: newStatus", ErrMissingField)
	}
	to, err := ParseStatus(in.NewStatus)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q", err, in.NewStatus)
	}

	tr, err := s.Store.TransitionStatus(ctx, in.OrderID, to, in.Actor)
	if err != nil {
		return nil, nil, err
	}

	res := &ChangeResult{Changed: tr.Changed, OldStatus: tr.OldStatus, NewStatus: to}
	if !tr.Changed {
		return res, nil, nil
	}
	return res, s.changeHooks(in, tr, to), nil
}

func (s *TransitionService) changeHooks(in ChangeInput, tr TransitionResult, to Status) []notify.Hook {
	var hooks []notify.Hook

	if s.Redis != nil {
		hooks = append(hooks, func(ctx context.Context) {
			statusKey := fmt.Sprintf(redisx.KeyOrderStatus, in.OrderID)
			if err := s.Redis.Set(ctx, statusKey, string(to), redisx.TTLStatusCache).Err(); err != nil {
				s.Log.Warn("status cache refresh failed", zap.Int64("order_id", in.OrderID), zap.Error(err))
			}
		})
	}

	if s.Producer != nil {
		hooks = append(hooks, s.changedEventHook(in, tr, to))
	}

	if s.Mail != nil && TriggersCompletionNotice(to) && tr.CustomerEmail != "" {
		displayID := DisplayID(s.Prefix, tr.CreatedAt, in.OrderID)
		email, name := tr.CustomerEmail, tr.CustomerName
		hooks = append(hooks, func(ctx context.Context) {
			if err := s.Mail.SendCompletionNotice(ctx, displayID, email, name); err != nil {
				s.Log.Warn("completion notice failed",
					zap.Int64("order_id", in.OrderID), zap.String("to", email), zap.Error(err))
			}
		})
	}

	return hooks
}

func (s *TransitionService) changedEventHook(in ChangeInput, tr TransitionResult, to Status) notify.Hook {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		CorrelationID: strconv.FormatInt(in.OrderID, 10),
		Payload: kafkax.MustMarshal(OrderStatusChangedPayload{
			OrderID:   in.OrderID,
			OldStatus: tr.OldStatus,
			NewStatus: to,
			ChangedBy: in.Actor,
		}),
	}
	value := kafkax.MustMarshal(ev)
	return func(ctx context.Context) {
		s.Producer.Publish(PartitionKey(in.OrderID), value,
			kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderStatusChanged)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
}
