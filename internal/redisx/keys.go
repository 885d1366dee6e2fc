package redisx

import "time"

const (
	// Cached workflow status for order views: order_status:{numeric id} -> status
	KeyOrderStatus = "order_status:%d"

	// Admin session token -> actor name. Issued by the admin login flow,
	// only resolved here.
	KeySession = "sess:admin:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLSession     = 12 * time.Hour
)
