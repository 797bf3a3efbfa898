package orders

import "strconv"

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
	TopicPayment            = "order.payment"
)

// Partition key = order id, so every event of one order keeps its order.
func PartitionKey(orderID int) []byte { return []byte(strconv.Itoa(orderID)) }
