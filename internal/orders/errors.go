package orders

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrMissingField      = errors.New("missing required field")
	ErrUnauthorized      = errors.New("no actor identity")

	// ErrNoOrderID: the insert committed a row but the driver handed back no
	// usable id. Fatal to the submission; forces rollback so we never issue a
	// confirmation for an order we cannot reference.
	ErrNoOrderID = errors.New("order insert returned no id")
)
