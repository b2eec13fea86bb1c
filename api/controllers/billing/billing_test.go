package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisocampo/nichesmith-backend/api/middleware"
	"github.com/luisocampo/nichesmith-backend/internal/checkout"
	"github.com/luisocampo/nichesmith-backend/pkg/db/models"
	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
)

type fakeCheckout struct {
	session *checkout.Session
	err     error
	userID  uuid.UUID
	planID  string
}

func (f *fakeCheckout) CreateSession(ctx context.Context, userID uuid.UUID, planID string) (*checkout.Session, error) {
	f.userID = userID
	f.planID = planID
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeProfileReader struct {
	profile *models.Profile
}

func (f *fakeProfileReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if f.profile == nil || f.profile.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.profile, nil
}

func authedPost(handler http.HandlerFunc, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/billing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.WithUser(req.Context(), userID, "u@example.com"))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateCheckoutSession(t *testing.T) {
	userID := uuid.New()
	svc := &fakeCheckout{session: &checkout.Session{ID: "cs_1", URL: "https://checkout.example/cs_1"}}
	rec := authedPost(CreateCheckoutSession(svc, nil), userID.String(), `{"plan_id":"pro"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.userID != userID || svc.planID != "pro" {
		t.Fatalf("service called with %v %q", svc.userID, svc.planID)
	}
	if !strings.Contains(rec.Body.String(), "cs_1") {
		t.Fatalf("session id missing: %s", rec.Body.String())
	}
}

func TestCreateCheckoutSessionRequiresAuth(t *testing.T) {
	rec := authedPost(CreateCheckoutSession(&fakeCheckout{}, nil), "", `{"plan_id":"pro"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateCheckoutSessionRequiresPlan(t *testing.T) {
	rec := authedPost(CreateCheckoutSession(&fakeCheckout{}, nil), uuid.NewString(), `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateCheckoutSessionPropagatesServiceError(t *testing.T) {
	svc := &fakeCheckout{err: pkgerrors.New(pkgerrors.CodeValidation, "unknown plan")}
	rec := authedPost(CreateCheckoutSession(svc, nil), uuid.NewString(), `{"plan_id":"bogus"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetProfileReturnsCallerProfile(t *testing.T) {
	userID := uuid.New()
	reader := &fakeProfileReader{profile: &models.Profile{ID: userID, Email: "u@example.com", PlanID: "pro"}}

	req := httptest.NewRequest(http.MethodGet, "/billing/profile", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), userID.String(), "u@example.com"))
	rec := httptest.NewRecorder()
	GetProfile(reader, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"plan_id":"pro"`) {
		t.Fatalf("profile payload missing plan: %s", rec.Body.String())
	}
}

func TestGetProfileUnknownUserIs404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/billing/profile", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), uuid.NewString(), ""))
	rec := httptest.NewRecorder()
	GetProfile(&fakeProfileReader{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
