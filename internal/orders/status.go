package orders

// Status is the order workflow status. The same value is mirrored into the
// order_status display column.
type Status string

const (
	StatusPending    Status = "Pending" // seeded at creation
	StatusConfirmed  Status = "Confirmed"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

var validStatus = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
}

// ParseStatus maps a client-supplied value onto the fixed whitelist.
// Anything outside the four known values is ErrInvalidStatus.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatus[st] {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// TriggersCompletionNotice reports whether reaching to should fire the
// customer completion email. Only the terminal Completed state qualifies.
func TriggersCompletionNotice(to Status) bool {
	return to == StatusCompleted
}
