package stripewebhook

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/luisocampo/nichesmith-backend/pkg/enums"
)

// Mutation variants. Each carries only the fields its event type requires;
// parseEvent is the single place raw provider payloads are validated, so the
// reconciler never touches loosely-typed data.
type mutation interface {
	isMutation()
}

type checkoutCompleted struct {
	UserID         uuid.UUID
	PlanID         string
	CustomerID     string
	SubscriptionID string
}

type invoicePaid struct {
	SubscriptionID string
}

type invoicePaymentFailed struct {
	SubscriptionID string
}

type subscriptionUpdated struct {
	SubscriptionID string
	Status         enums.SubscriptionStatus
	PriceID        string // optional; empty means no plan change candidate
}

type subscriptionDeleted struct {
	SubscriptionID string
}

func (checkoutCompleted) isMutation() {}

func (invoicePaid) isMutation() {}

func (invoicePaymentFailed) isMutation() {}

func (subscriptionUpdated) isMutation() {}

func (subscriptionDeleted) isMutation() {}

// missingDataError marks events that cannot be acted on because a required
// field is absent. The reconciler acknowledges these instead of failing, so
// the provider does not redeliver payloads that will never become valid.
type missingDataError struct {
	field string
}

func (e *missingDataError) Error() string {
	return fmt.Sprintf("required field %s missing", e.field)
}

func missingField(field string) error {
	return &missingDataError{field: field}
}

// parseEvent classifies a verified provider event into a mutation. A nil
// mutation with nil error means the type is unrecognized and should be
// acknowledged without action.
func parseEvent(event *stripe.Event) (mutation, error) {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return parseCheckoutCompleted(event)
	case stripe.EventTypeInvoicePaid, stripe.EventTypeInvoicePaymentSucceeded:
		subID, err := invoiceSubscriptionID(event)
		if err != nil {
			return nil, err
		}
		return invoicePaid{SubscriptionID: subID}, nil
	case stripe.EventTypeInvoicePaymentFailed:
		subID, err := invoiceSubscriptionID(event)
		if err != nil {
			return nil, err
		}
		return invoicePaymentFailed{SubscriptionID: subID}, nil
	case stripe.EventTypeCustomerSubscriptionUpdated:
		return parseSubscriptionUpdated(event)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription event: %w", err)
		}
		if sub.ID == "" {
			return nil, missingField("subscription id")
		}
		return subscriptionDeleted{SubscriptionID: sub.ID}, nil
	default:
		return nil, nil
	}
}

func parseCheckoutCompleted(event *stripe.Event) (mutation, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	if session.ClientReferenceID == "" {
		return nil, missingField("client_reference_id")
	}
	userID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		return nil, missingField("client_reference_id")
	}

	planID := session.Metadata["plan_id"]
	if planID == "" {
		return nil, missingField("plan_id")
	}
	if session.Customer == nil || session.Customer.ID == "" {
		return nil, missingField("customer")
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		return nil, missingField("subscription")
	}

	return checkoutCompleted{
		UserID:         userID,
		PlanID:         planID,
		CustomerID:     session.Customer.ID,
		SubscriptionID: session.Subscription.ID,
	}, nil
}

func parseSubscriptionUpdated(event *stripe.Event) (mutation, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription event: %w", err)
	}
	if sub.ID == "" {
		return nil, missingField("subscription id")
	}

	status, err := enums.ParseSubscriptionStatus(string(sub.Status))
	if err != nil {
		return nil, missingField("status")
	}

	return subscriptionUpdated{
		SubscriptionID: sub.ID,
		Status:         status,
		PriceID:        firstItemPriceID(&sub),
	}, nil
}

// invoiceSubscriptionID digs the subscription id out of an invoice payload.
// Older API versions carry it at the top level, newer ones nest it under
// parent.subscription_details.
func invoiceSubscriptionID(event *stripe.Event) (string, error) {
	if id := event.GetObjectValue("subscription"); id != "" {
		return id, nil
	}
	if id := event.GetObjectValue("parent", "subscription_details", "subscription"); id != "" {
		return id, nil
	}
	return "", missingField("subscription id")
}

func firstItemPriceID(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	if sub.Items.Data[0].Price != nil {
		return sub.Items.Data[0].Price.ID
	}
	return ""
}
