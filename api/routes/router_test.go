package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	aisvc "github.com/luisocampo/nichesmith-backend/internal/ai"
	"github.com/luisocampo/nichesmith-backend/internal/checkout"
	"github.com/luisocampo/nichesmith-backend/pkg/config"
	"github.com/luisocampo/nichesmith-backend/pkg/db/models"
	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
	"github.com/luisocampo/nichesmith-backend/pkg/identity"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	if token != "valid" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	return &identity.Identity{UserID: uuid.New(), Email: "u@example.com"}, nil
}

type stubWebhookService struct{}

func (stubWebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error { return nil }

type stubCheckout struct{}

func (stubCheckout) CreateSession(ctx context.Context, userID uuid.UUID, planID string) (*checkout.Session, error) {
	return &checkout.Session{ID: "cs_1", URL: "https://example.com"}, nil
}

type stubProfiles struct{}

func (stubProfiles) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubPlans struct{}

func (stubPlans) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubPlans) FindByMonthlyPriceID(ctx context.Context, priceID string) (*models.Plan, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubPlans) List(ctx context.Context) ([]models.Plan, error) {
	return []models.Plan{{ID: models.FreePlanID, Name: "Free"}}, nil
}

type stubAI struct{}

func (stubAI) GenerateImage(ctx context.Context, prompt, title string) (*aisvc.GeneratedImage, error) {
	return &aisvc.GeneratedImage{DataURI: "data:image/png;base64,AA=="}, nil
}

func (stubAI) SuggestNames(ctx context.Context, niche string) ([]string, error) {
	return []string{"Acme"}, nil
}

func (stubAI) SuggestKeywords(ctx context.Context, topic string) (*aisvc.KeywordSuggestions, error) {
	return &aisvc.KeywordSuggestions{Keywords: []string{"a"}}, nil
}

func (stubAI) GenerateArticle(ctx context.Context, keyword, niche string) (*aisvc.Article, error) {
	return &aisvc.Article{Title: "T"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "dev"
	return NewRouter(
		cfg,
		nil,
		prometheus.NewRegistry(),
		stubPinger{},
		nil,
		stubVerifier{},
		nil,
		stubWebhookService{},
		stubCheckout{},
		stubProfiles{},
		stubPlans{},
		stubAI{},
	)
}

func TestPublicRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/billing/plans", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rec.Code)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{
		"/api/v1/billing/checkout-session",
		"/api/v1/ai/suggest-names",
		"/api/v1/ai/generate-image",
		"/api/v1/ai/suggest-keywords",
		"/api/v1/ai/generate-article",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestAuthenticatedAIRequest(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/suggest-names", strings.NewReader(`{"niche":"x"}`))
	req.Header.Set("Authorization", "Bearer valid")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Acme") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestWebhookWithoutSignatureIs400(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
