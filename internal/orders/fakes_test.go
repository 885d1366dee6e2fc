package orders

import (
	"context"
	"errors"

	"github.com/anatechlabs/sample-portal/internal/notify"
)

type fakeCreator struct {
	calls int
	got   *Submission
	key   OrderKey
	err   error
}

func (f *fakeCreator) CreateOrder(_ context.Context, sub *Submission) (OrderKey, error) {
	f.calls++
	f.got = sub
	if f.err != nil {
		return OrderKey{}, f.err
	}
	return f.key, nil
}

type fakeStatusStore struct {
	calls    int
	gotID    int64
	gotTo    Status
	gotActor string
	res      TransitionResult
	err      error
}

func (f *fakeStatusStore) TransitionStatus(_ context.Context, orderID int64, to Status, actor string) (TransitionResult, error) {
	f.calls++
	f.gotID = orderID
	f.gotTo = to
	f.gotActor = actor
	if f.err != nil {
		return TransitionResult{}, f.err
	}
	return f.res, nil
}

type fakeDispatcher struct {
	confirmations int
	alerts        int
	completions   int

	lastMail         notify.OrderMail
	lastCompletionID string
	lastEmail        string
	lastName         string

	fail bool
}

func (f *fakeDispatcher) SendOrderConfirmation(_ context.Context, m notify.OrderMail) error {
	f.confirmations++
	f.lastMail = m
	if f.fail {
		return errors.New("smtp unreachable")
	}
	return nil
}

func (f *fakeDispatcher) SendInternalAlert(_ context.Context, m notify.OrderMail) error {
	f.alerts++
	f.lastMail = m
	if f.fail {
		return errors.New("smtp unreachable")
	}
	return nil
}

func (f *fakeDispatcher) SendCompletionNotice(_ context.Context, displayID, email, name string) error {
	f.completions++
	f.lastCompletionID = displayID
	f.lastEmail = email
	f.lastName = name
	if f.fail {
		return errors.New("smtp unreachable")
	}
	return nil
}
