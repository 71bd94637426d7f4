package enums

import "fmt"

// OrderStatus tracks the delivery lifecycle of an order. The values form a
// fixed total order; transitions are validated against their indices.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// orderedStatuses is the canonical progression. Index positions define which
// transitions are adjacent.
var orderedStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the position of the status in the canonical progression, or
// -1 for unknown values.
func (s OrderStatus) Index() int {
	for i, candidate := range orderedStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Compare returns a negative value when s precedes other in the progression,
// zero when equal, and a positive value when s is ahead of other.
func (s OrderStatus) Compare(other OrderStatus) int {
	return s.Index() - other.Index()
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

// OrderStatuses returns the canonical progression in order.
func OrderStatuses() []OrderStatus {
	statuses := make([]OrderStatus, len(orderedStatuses))
	copy(statuses, orderedStatuses)
	return statuses
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range orderedStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
