package enums

import (
	"fmt"
	"strings"
)

// SubscriptionStatus tracks the lifecycle of a recurring delivery plan.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

var validSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusPaused,
	SubscriptionStatusCancelled,
}

// String implements fmt.Stringer.
func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubscriptionStatus.
func (s SubscriptionStatus) IsValid() bool {
	for _, candidate := range validSubscriptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// SubscriptionFrequency is the delivery cadence of a plan.
type SubscriptionFrequency string

const (
	SubscriptionFrequencyWeekly  SubscriptionFrequency = "weekly"
	SubscriptionFrequencyMonthly SubscriptionFrequency = "monthly"
)

// String implements fmt.Stringer.
func (f SubscriptionFrequency) String() string {
	return string(f)
}

// IsValid reports whether the value is a known SubscriptionFrequency.
func (f SubscriptionFrequency) IsValid() bool {
	return f == SubscriptionFrequencyWeekly || f == SubscriptionFrequencyMonthly
}

// ParseSubscriptionFrequency normalizes raw input (trimmed, case-insensitive)
// into a SubscriptionFrequency.
func ParseSubscriptionFrequency(value string) (SubscriptionFrequency, error) {
	normalized := SubscriptionFrequency(strings.ToLower(strings.TrimSpace(value)))
	if !normalized.IsValid() {
		return "", fmt.Errorf("invalid frequency %q", value)
	}
	return normalized, nil
}
