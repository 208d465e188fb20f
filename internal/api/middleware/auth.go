package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/sarpras/inventaris/internal/api/shared/errors"
	"github.com/sarpras/inventaris/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	ACTOR_ID_KEY   contextKey = "actor_id"
	JWT_CLAIMS_KEY contextKey = "jwt_claims"
	REQUEST_ID_KEY contextKey = "request_id"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string
}

// Auth returns a gin middleware validating a Bearer JWT signed with the
// shared HMAC secret. The numeric subject claim identifies the acting user
// and is attributed on every audited mutation.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c.GetHeader("Authorization"), cfg)
		if err != nil {
			logger.Warn("Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		c.Set(string(JWT_CLAIMS_KEY), claims)

		if actorID, err := strconv.ParseInt(claims.Subject, 10, 64); err == nil {
			c.Set(string(ACTOR_ID_KEY), actorID)
		}

		c.Next()
	}
}

// ActorID returns the authenticated user ID from the request context, 0 when
// the token carried no numeric subject
func ActorID(c *gin.Context) int64 {
	return c.GetInt64(string(ACTOR_ID_KEY))
}

func authenticate(authHeader string, cfg AuthConfig) (*jwt.RegisteredClaims, error) {
	if authHeader == "" {
		return nil, errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errors.New("invalid Authorization header format")
	}

	return validateJWT(parts[1], cfg.JWTSecret)
}

// validateJWT validates an HMAC-signed token and returns its claims
func validateJWT(tokenString string, secret string) (*jwt.RegisteredClaims, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
