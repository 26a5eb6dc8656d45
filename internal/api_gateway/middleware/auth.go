package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OwnerIDKey is the key used to store the authenticated owner id in the context
const OwnerIDKey = "owner_id"

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidOwner = errors.New("token subject is not a valid owner id")
)

// ownerClaims accepts the owner id in sub, or in user_id for tokens minted
// by services that keep sub for something else.
type ownerClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *ownerClaims) ownerID() (uuid.UUID, error) {
	raw := c.Subject
	if raw == "" {
		raw = c.UserID
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errInvalidOwner
	}
	return id, nil
}

// AuthConfig configures bearer token verification
type AuthConfig struct {
	Secret []byte
	Issuer string // Checked when non-empty
}

// Auth middleware verifies an HS256 bearer token and stores the owner id it
// names. Requests without a valid token are rejected with 401.
func Auth(logger *slog.Logger, cfg AuthConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return cfg.Secret, nil }

	return func(c *gin.Context) {
		ownerID, err := authenticate(c.GetHeader("Authorization"), parser, keyFunc)
		if err != nil {
			logger.Warn("Rejected unauthenticated request",
				"path", c.Request.URL.Path,
				"correlation_id", GetCorrelationID(c),
				"error", err,
			)
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid bearer token")
			return
		}

		c.Set(OwnerIDKey, ownerID)
		c.Next()
	}
}

func authenticate(header string, parser *jwt.Parser, keyFunc jwt.Keyfunc) (uuid.UUID, error) {
	scheme, tokenString, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
		return uuid.Nil, errMissingToken
	}

	var claims ownerClaims
	if _, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), &claims, keyFunc); err != nil {
		return uuid.Nil, err
	}
	return claims.ownerID()
}

// GetOwnerID retrieves the authenticated owner id from the gin context
func GetOwnerID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(OwnerIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// abortWithError writes the standard error envelope and stops the chain
func abortWithError(c *gin.Context, status int, code, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(status, response)
}
