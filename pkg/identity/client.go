package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/luisocampo/nichesmith-backend/pkg/config"
	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
)

// Identity is the resolved principal behind a bearer token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Verifier resolves bearer tokens into identities.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Client talks to the external identity provider's user endpoint. Token
// signatures are validated by the provider, not locally; the local JWT parse
// only rejects garbage and expired tokens before spending a network call.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	parser     *jwt.Parser
}

var errBaseURLRequired = errors.New("identity base url is required")

// NewClient builds the provider adapter.
func NewClient(ctx context.Context, cfg config.IdentityConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, "identity client initialized")
	}

	return &Client{
		baseURL:    baseURL,
		serviceKey: strings.TrimSpace(cfg.ServiceKey),
		httpClient: &http.Client{Timeout: timeout},
		parser:     jwt.NewParser(),
	}, nil
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify resolves the token against the provider. Invalid or expired
// credentials come back as CodeUnauthorized; provider outages come back as
// CodeDependency so callers can tell "bad token" from "auth service down".
func (c *Client) Verify(ctx context.Context, token string) (*Identity, error) {
	if err := c.precheck(token); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build identity request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.serviceKey != "" {
		req.Header.Set("apikey", c.serviceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify token")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("identity provider returned %d", resp.StatusCode))
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode identity response")
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse identity user id")
	}

	return &Identity{UserID: userID, Email: user.Email}, nil
}

func (c *Client) precheck(token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims := jwt.MapClaims{}
	if _, _, err := c.parser.ParseUnverified(token, claims); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed token")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed token")
	}
	if exp != nil && exp.Before(time.Now()) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "token expired")
	}
	return nil
}
