package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
	"github.com/luisocampo/nichesmith-backend/pkg/identity"
)

type fakeVerifier struct {
	identity *identity.Identity
	err      error
	token    string
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func TestAuthSeedsContext(t *testing.T) {
	userID := uuid.New()
	verifier := &fakeVerifier{identity: &identity.Identity{UserID: userID, Email: "a@b.c"}}

	var gotID, gotEmail string
	handler := Auth(verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserIDFromContext(r.Context())
		gotEmail = UserEmailFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("Bearer tok-123"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if verifier.token != "tok-123" {
		t.Fatalf("token not stripped of scheme: %q", verifier.token)
	}
	if gotID != userID.String() || gotEmail != "a@b.c" {
		t.Fatalf("context not seeded: %q %q", gotID, gotEmail)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	handler := Auth(&fakeVerifier{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	verifier := &fakeVerifier{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")}
	handler := Auth(verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("Bearer bad"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthProviderOutageIsNotUnauthorized(t *testing.T) {
	verifier := &fakeVerifier{err: pkgerrors.New(pkgerrors.CodeDependency, "identity provider returned 500")}
	handler := Auth(verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("Bearer tok"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("provider outage must map to 503, got %d", rec.Code)
	}
}
