package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/luisocampo/nichesmith-backend/internal/plans"
	"github.com/luisocampo/nichesmith-backend/internal/profiles"
	"github.com/luisocampo/nichesmith-backend/pkg/db/models"
	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
)

// Session is the opaque handle the frontend needs to redirect into the
// provider's hosted checkout.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ServiceParams struct {
	Profiles   profiles.Repository
	Plans      plans.Repository
	Stripe     StripeCheckoutClient
	SuccessURL string
	CancelURL  string
	Logger     *logger.Logger
}

// Service creates subscription checkout sessions. The session carries the
// profile id as client_reference_id and the plan id in metadata; the webhook
// reconciler closes the loop when checkout completes.
type Service struct {
	profiles   profiles.Repository
	plans      plans.Repository
	stripe     StripeCheckoutClient
	successURL string
	cancelURL  string
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profiles repo required")
	}
	if params.Plans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "plans repo required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &Service{
		profiles:   params.Profiles,
		plans:      params.Plans,
		stripe:     params.Stripe,
		successURL: params.SuccessURL,
		cancelURL:  params.CancelURL,
		logg:       params.Logger,
	}, nil
}

// CreateSession builds a subscription-mode checkout session for the given
// plan. The profile's billing customer is created on first use and persisted,
// so repeat checkouts reuse the same customer.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, planID string) (*Session, error) {
	if planID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id is required")
	}
	if planID == models.FreePlanID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "free plan does not require checkout")
	}

	plan, err := s.plans.FindByID(ctx, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	if plan.StripePriceIDMonthly == nil || *plan.StripePriceIDMonthly == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan has no billable price")
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	customerID, err := s.ensureCustomer(ctx, profile)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(userID.String()),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    plan.StripePriceIDMonthly,
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("plan_id", plan.ID)

	session, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "checkout session created")
	}
	return &Session{ID: session.ID, URL: session.URL}, nil
}

// ensureCustomer returns the profile's billing customer id, creating and
// persisting one the first time through.
func (s *Service) ensureCustomer(ctx context.Context, profile *models.Profile) (string, error) {
	if profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		return *profile.StripeCustomerID, nil
	}

	params := &stripe.CustomerCreateParams{
		Email: stripe.String(profile.Email),
	}
	params.AddMetadata("profile_id", profile.ID.String())

	customer, err := s.stripe.CreateCustomer(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create billing customer")
	}

	if err := s.profiles.SetStripeCustomerID(ctx, profile.ID, customer.ID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist billing customer id")
	}
	return customer.ID, nil
}
