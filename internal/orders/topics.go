package orders

import "strconv"

const (
	TopicOrderSubmitted     = "ssp.order.submitted"
	TopicOrderStatusChanged = "ssp.order.status.changed"
)

// Partition key = order id, so all events for one order keep their order.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
