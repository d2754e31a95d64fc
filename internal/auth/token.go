package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrTokenUnavailable means no bearer token could be obtained.
	ErrTokenUnavailable = errors.New("token unavailable")
	// ErrTokenExpired means the only token at hand has expired.
	ErrTokenExpired = errors.New("token expired")
)

// TokenProvider hands out bearer tokens for authenticated backend calls.
// Token is called once per submission; implementations must not assume the caller caches.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	IsAuthenticated(ctx context.Context) bool
}

// StaticToken serves a single pre-issued token, e.g. one minted for development.
type StaticToken struct {
	token string
	now   func() time.Time
}

func NewStaticToken(token string) *StaticToken {
	return &StaticToken{token: strings.TrimSpace(token), now: time.Now}
}

// Token returns the configured token unless it is missing or its exp claim has passed.
// Opaque (non-JWT) tokens are returned as they are.
func (s *StaticToken) Token(ctx context.Context) (string, error) {
	if s.token == "" {
		return "", fmt.Errorf("static token: %w", ErrTokenUnavailable)
	}
	if exp, ok := expiry(s.token); ok && !s.now().Before(exp) {
		return "", fmt.Errorf("static token expired at %s: %w", exp.Format(time.RFC3339), ErrTokenExpired)
	}
	return s.token, nil
}

func (s *StaticToken) IsAuthenticated(ctx context.Context) bool {
	_, err := s.Token(ctx)
	return err == nil
}

// expiry reads the exp claim without verifying the signature; the backend does the verifying.
func expiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// ClientCredentials obtains tokens from the identity provider's /oauth/token endpoint.
// Every call performs a fresh exchange.
type ClientCredentials struct {
	config     clientcredentials.Config
	httpClient *http.Client
}

type ClientCredentialsConfig struct {
	Domain       string
	ClientID     string
	ClientSecret string
	Audience     string
	Scopes       []string
	HTTPClient   *http.Client
}

func NewClientCredentials(cfg ClientCredentialsConfig) *ClientCredentials {
	domain := strings.TrimRight(cfg.Domain, "/")
	if !strings.HasPrefix(domain, "https://") && !strings.HasPrefix(domain, "http://") {
		domain = "https://" + domain
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	params := url.Values{}
	if cfg.Audience != "" {
		params.Set("audience", cfg.Audience)
	}
	return &ClientCredentials{
		config: clientcredentials.Config{
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			TokenURL:       domain + "/oauth/token",
			Scopes:         cfg.Scopes,
			EndpointParams: params,
			AuthStyle:      oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

// Token exchanges the client credentials. Config.Token builds a new token source each
// time, so nothing is cached between calls.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.config.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			logger.Warningf("identity provider refused token exchange: status %d", retrieveErr.Response.StatusCode)
		}
		return "", fmt.Errorf("token exchange: %v: %w", err, ErrTokenUnavailable)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response without access_token: %w", ErrTokenUnavailable)
	}
	return tok.AccessToken, nil
}

// IsAuthenticated reports whether credentials are configured. It does not contact the identity provider.
func (c *ClientCredentials) IsAuthenticated(ctx context.Context) bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}
