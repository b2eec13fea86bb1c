package enums

import "fmt"

// SubscriptionStatus mirrors the billing provider's subscription state.
type SubscriptionStatus string

const (
	SubscriptionStatusNone     SubscriptionStatus = "none"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

var validSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusNone,
	SubscriptionStatusActive,
	SubscriptionStatusPastDue,
	SubscriptionStatusCanceled,
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubscriptionStatus.
func (s SubscriptionStatus) IsValid() bool {
	for _, candidate := range validSubscriptionStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ParseSubscriptionStatus converts raw provider input into a
// SubscriptionStatus. Provider states the profile schema does not track
// (trialing, incomplete, unpaid, paused) are folded into the nearest of the
// tracked states.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	switch SubscriptionStatus(value) {
	case SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusCanceled, SubscriptionStatusNone:
		return SubscriptionStatus(value), nil
	}
	switch value {
	case "trialing":
		return SubscriptionStatusActive, nil
	case "unpaid", "incomplete", "incomplete_expired":
		return SubscriptionStatusPastDue, nil
	case "paused":
		return SubscriptionStatusCanceled, nil
	}
	return "", fmt.Errorf("unknown subscription status %q", value)
}
