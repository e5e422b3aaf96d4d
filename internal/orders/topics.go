package orders

import "strconv"

const (
	TopicOrderPlaced = "minimart.order.placed"
	TopicOrderPacked = "minimart.order.packed"
)

// Partition key = order number, so every event for one order keeps ordering.
func PartitionKey(orderNo int64) []byte {
	return []byte(strconv.FormatInt(orderNo, 10))
}
