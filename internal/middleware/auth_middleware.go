package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"github.com/ArowuTest/ema-randomizer/internal/config"
)

const (
	bearerSchema = "Bearer "
	apiKeyHeader = "X-API-Key"
)

// RunAuthMiddleware protects the run endpoints. A request is accepted with either an HS256
// bearer token signed with the JWT secret or an X-API-Key matching the configured bcrypt hash.
func RunAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtSecret := []byte(cfg.JWT.Secret)
	apiKeyHash := []byte(cfg.Server.APIKeyHash)
	if len(jwtSecret) == 0 && len(apiKeyHash) == 0 {
		slog.Warn("RunAuthMiddleware: neither JWT_SECRET nor API_KEY_HASH is set, protected routes will reject every request")
	}

	return func(c *gin.Context) {
		if key := c.GetHeader(apiKeyHeader); key != "" {
			if len(apiKeyHash) == 0 || bcrypt.CompareHashAndPassword(apiKeyHash, []byte(key)) != nil {
				slog.Warn("RunAuthMiddleware: API key rejected", "clientIp", c.ClientIP())
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
				return
			}
			c.Set("principal", "api-key")
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}
		if len(jwtSecret) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		token, err := jwt.Parse(authHeader[len(bearerSchema):], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil {
			slog.Warn("RunAuthMiddleware: token validation failed", "error", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		subject, _ := token.Claims.GetSubject()
		c.Set("principal", subject)
		c.Next()
	}
}
