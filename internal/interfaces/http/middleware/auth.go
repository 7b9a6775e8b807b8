package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

const (
	HeaderAPIKey    = "X-API-Key"
	HeaderAPISecret = "X-API-Secret"

	// ContextKeyAPIAuthenticated is set on requests that passed APIKeyAuth.
	ContextKeyAPIAuthenticated = "api_key_authenticated"
)

// APIKeyAuth accepts the network API credentials either as the X-API-Key and
// X-API-Secret headers or as HTTP basic auth (key:secret). An unconfigured key
// rejects every request.
func APIKeyAuth(key, secret string, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		gotKey, gotSecret := c.GetHeader(HeaderAPIKey), c.GetHeader(HeaderAPISecret)
		if gotKey == "" {
			if user, pass, ok := c.Request.BasicAuth(); ok {
				gotKey, gotSecret = user, pass
			}
		}

		if gotKey == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "API credentials are required")
			c.Abort()
			return
		}

		if key == "" || !credentialsMatch(key, secret, gotKey, gotSecret) {
			log.Warnw("rejected API credentials",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
			)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid API credentials")
			c.Abort()
			return
		}

		c.Set(ContextKeyAPIAuthenticated, true)
		c.Next()
	}
}

func credentialsMatch(key, secret, gotKey, gotSecret string) bool {
	keyOK := subtle.ConstantTimeCompare([]byte(key), []byte(gotKey)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(gotSecret)) == 1
	return keyOK && secretOK
}
