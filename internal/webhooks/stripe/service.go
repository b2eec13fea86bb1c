package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/luisocampo/nichesmith-backend/internal/profiles"
	"github.com/luisocampo/nichesmith-backend/pkg/db/models"
	"github.com/luisocampo/nichesmith-backend/pkg/enums"
	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
	"github.com/luisocampo/nichesmith-backend/pkg/metrics"
)

type planMapper interface {
	PlanIDForPrice(ctx context.Context, priceID string) (string, bool, error)
}

type billingPublisher interface {
	PublishBilling(ctx context.Context, data []byte) error
}

type ServiceParams struct {
	Profiles  profiles.Repository
	Plans     planMapper
	Logger    *logger.Logger
	Metrics   *metrics.WebhookMetrics
	Publisher billingPublisher // optional
}

// Service applies verified billing events to the profile store. Every
// mutation is a field-level set, so redelivered events converge to the same
// state and out-of-order deliveries resolve last-write-wins.
type Service struct {
	profiles  profiles.Repository
	plans     planMapper
	logg      *logger.Logger
	metrics   *metrics.WebhookMetrics
	publisher billingPublisher
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profiles repo required")
	}
	if params.Plans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "plan mapper required")
	}
	return &Service{
		profiles:  params.Profiles,
		plans:     params.Plans,
		logg:      params.Logger,
		metrics:   params.Metrics,
		publisher: params.Publisher,
	}, nil
}

// HandleEvent applies at most one profile mutation for the event. A nil
// return means the event was handled and must be acknowledged; errors are
// reserved for infrastructure failures where provider redelivery can help.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	eventType := string(event.Type)
	ctx = s.withEventType(ctx, eventType)

	parsed, err := parseEvent(event)
	if err != nil {
		var missing *missingDataError
		if errors.As(err, &missing) {
			s.drop(ctx, eventType, "missing_data", missing.Error())
			return nil
		}
		s.drop(ctx, eventType, "malformed_payload", err.Error())
		return nil
	}
	if parsed == nil {
		s.drop(ctx, eventType, "unrecognized_type", "")
		return nil
	}

	if err := s.apply(ctx, parsed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No profile matches the event's key. Redelivery cannot fix
			// that, so acknowledge and leave a trace for diagnosis.
			s.drop(ctx, eventType, "no_matching_profile", "")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply billing event")
	}

	s.metrics.IncProcessed(eventType)
	s.notify(ctx, eventType, parsed)
	return nil
}

func (s *Service) apply(ctx context.Context, parsed mutation) error {
	switch m := parsed.(type) {
	case checkoutCompleted:
		return s.profiles.UpdateByID(ctx, m.UserID, map[string]any{
			"plan_id":                m.PlanID,
			"stripe_customer_id":     m.CustomerID,
			"stripe_subscription_id": m.SubscriptionID,
			"subscription_status":    enums.SubscriptionStatusActive,
		})
	case invoicePaid:
		return s.profiles.UpdateByStripeSubscriptionID(ctx, m.SubscriptionID, map[string]any{
			"subscription_status": enums.SubscriptionStatusActive,
		})
	case invoicePaymentFailed:
		return s.profiles.UpdateByStripeSubscriptionID(ctx, m.SubscriptionID, map[string]any{
			"subscription_status": enums.SubscriptionStatusPastDue,
		})
	case subscriptionUpdated:
		fields := map[string]any{
			"subscription_status": m.Status,
		}
		if planID := s.resolvePlan(ctx, m.PriceID); planID != "" {
			fields["plan_id"] = planID
		}
		return s.profiles.UpdateByStripeSubscriptionID(ctx, m.SubscriptionID, fields)
	case subscriptionDeleted:
		return s.profiles.UpdateByStripeSubscriptionID(ctx, m.SubscriptionID, map[string]any{
			"subscription_status": enums.SubscriptionStatusCanceled,
			"plan_id":             models.FreePlanID,
		})
	default:
		return fmt.Errorf("unhandled mutation %T", parsed)
	}
}

// resolvePlan maps the event's price id to a plan id. Empty means "leave the
// plan alone": a miss or a lookup failure must never erase the user's plan.
func (s *Service) resolvePlan(ctx context.Context, priceID string) string {
	if priceID == "" {
		return ""
	}
	planID, ok, err := s.plans.PlanIDForPrice(ctx, priceID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "price_id", priceID), "plan lookup failed, keeping current plan")
		}
		return ""
	}
	if !ok {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "price_id", priceID), "no plan mapped to price, keeping current plan")
		}
		return ""
	}
	return planID
}

func (s *Service) drop(ctx context.Context, eventType, reason, detail string) {
	s.metrics.IncDropped(eventType, reason)
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithField(ctx, "reason", reason)
	if detail != "" {
		logCtx = s.logg.WithField(logCtx, "detail", detail)
	}
	s.logg.Warn(logCtx, "billing event acknowledged without mutation")
}

// notify publishes a best-effort change notification. Failures are logged
// only; the profile store is already consistent at this point.
func (s *Service) notify(ctx context.Context, eventType string, parsed mutation) {
	if s.publisher == nil {
		return
	}

	payload := map[string]string{"event_type": eventType}
	switch m := parsed.(type) {
	case checkoutCompleted:
		payload["user_id"] = m.UserID.String()
		payload["stripe_subscription_id"] = m.SubscriptionID
	case invoicePaid:
		payload["stripe_subscription_id"] = m.SubscriptionID
	case invoicePaymentFailed:
		payload["stripe_subscription_id"] = m.SubscriptionID
	case subscriptionUpdated:
		payload["stripe_subscription_id"] = m.SubscriptionID
	case subscriptionDeleted:
		payload["stripe_subscription_id"] = m.SubscriptionID
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.publisher.PublishBilling(ctx, data); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "billing event notification failed")
	}
}

func (s *Service) withEventType(ctx context.Context, eventType string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithEventType(ctx, eventType)
}
