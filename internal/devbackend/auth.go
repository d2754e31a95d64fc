package devbackend

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"loto/internal/models"
)

const claimsKey = "claims"

// Claims are the access token claims the backend cares about.
type Claims struct {
	Scope       string   `json:"scope,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasScope looks in both the space-separated scope claim and the permissions array.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(strings.Fields(c.Scope), scope) || slices.Contains(c.Permissions, scope)
}

// Verifier checks HS256 access tokens issued for this backend.
type Verifier struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewVerifier(signingKey, issuer, audience string) *Verifier {
	return &Verifier{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   strings.TrimRight(audience, "/"),
	}
}

var (
	errTokenExpired = errors.New("token expired")
	errTokenInvalid = errors.New("token invalid")
)

// Verify parses and validates a raw token.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return v.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, errTokenInvalid
	}
	if !parsed.Valid {
		return nil, errTokenInvalid
	}
	return claims, nil
}

// Mint issues a token for subject with the given scopes, for development and tests.
func (v *Verifier) Mint(subject string, scopes []string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			Audience:  []string{v.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			ID:        uuid.NewString(),
		},
	}).SignedString(v.signingKey)
}

// RequireToken rejects requests without a valid bearer token and stores the claims on the context.
func (v *Verifier) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortDetail(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		claims, err := v.Verify(strings.TrimSpace(raw))
		if err != nil {
			detail := "Token invalid"
			if errors.Is(err, errTokenExpired) {
				detail = "Token expired"
			}
			abortDetail(c, http.StatusUnauthorized, detail)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireScope must run after RequireToken.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := c.MustGet(claimsKey).(*Claims)
		if claims == nil || !claims.HasScope(scope) {
			abortDetail(c, http.StatusForbidden, "Insufficient scope. Required: "+scope)
			return
		}
		c.Next()
	}
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, models.ErrorPayload{Detail: detail})
}
