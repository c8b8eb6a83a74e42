package orders

const (
	TopicOrderPlaced    = "checkout.order.placed"
	TopicOrderCancelled = "orders.order.cancelled"
	TopicStockReleased  = "inventory.stock.released"
)

// Partition key = order_id so all events for one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
