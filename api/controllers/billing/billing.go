package billing

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisocampo/nichesmith-backend/api/middleware"
	"github.com/luisocampo/nichesmith-backend/api/responses"
	"github.com/luisocampo/nichesmith-backend/api/validators"
	"github.com/luisocampo/nichesmith-backend/internal/checkout"
	"github.com/luisocampo/nichesmith-backend/internal/plans"
	"github.com/luisocampo/nichesmith-backend/pkg/db/models"
	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
)

type CheckoutService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, planID string) (*checkout.Session, error)
}

type ProfileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type createSessionRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// CreateCheckoutSession starts a subscription checkout for the caller.
func CreateCheckoutSession(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req createSessionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.CreateSession(ctx, userID, req.PlanID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// GetProfile returns the caller's billing profile.
func GetProfile(repo ProfileReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		profile, err := repo.FindByID(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile"))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ListPlans returns the public plan catalog.
func ListPlans(repo plans.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		catalog, err := repo.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans"))
			return
		}
		responses.WriteSuccess(w, catalog)
	}
}

func authedUserID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid identity")
	}
	return userID, nil
}
