package enums

// DeliveryStatus mirrors the underlying order status onto a scheduled
// subscription delivery.
type DeliveryStatus string

const (
	DeliveryStatusScheduled  DeliveryStatus = "scheduled"
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusConfirmed  DeliveryStatus = "confirmed"
	DeliveryStatusProcessing DeliveryStatus = "processing"
	DeliveryStatusShipped    DeliveryStatus = "shipped"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
)

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	switch d {
	case DeliveryStatusScheduled, DeliveryStatusPending, DeliveryStatusConfirmed,
		DeliveryStatusProcessing, DeliveryStatusShipped, DeliveryStatusDelivered:
		return true
	default:
		return false
	}
}

// DeliveryStatusForOrder maps an order status onto the delivery mirror.
func DeliveryStatusForOrder(status OrderStatus) DeliveryStatus {
	return DeliveryStatus(status)
}

// IsFulfilled reports whether the scheduled delivery has completed.
func (d DeliveryStatus) IsFulfilled() bool {
	return d == DeliveryStatusDelivered
}
