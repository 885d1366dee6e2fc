package orders

import "time"

type Order struct {
	ID             int64
	CustomerName   string
	CustomerEmail  string
	CompanyName    string
	Phone          string
	Address        string
	Industry       string
	Classification string
	Country        string
	State          string
	Subtotal       float64
	GST            float64
	TotalAmount    float64
	PaymentStatus  string
	Status         Status
	OrderStatus    Status // display mirror of Status
	CreatedAt      time.Time
}

type LineItem struct {
	ID          int64
	OrderID     int64
	ServiceName string
	Quantity    int
	Price       float64
	LineTotal   float64 // price * quantity, fixed at submission time
}

type Payment struct {
	ID        int64
	OrderID   int64
	Method    string
	Status    string
	Amount    float64
	Reference string
	CreatedAt time.Time
}

// StatusAudit is append-only: one row per real transition, never updated.
type StatusAudit struct {
	ID        int64
	OrderID   int64
	OldStatus Status
	NewStatus Status
	ChangedBy string
	CreatedAt time.Time
}
