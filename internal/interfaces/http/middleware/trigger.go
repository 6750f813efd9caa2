package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/motorshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// TriggerSecretConfig guards the cron-facing trigger endpoints
type TriggerSecretConfig struct {
	// Secret is the expected bearer token. Empty leaves the trigger open.
	Secret string
	// AllowImmediate lets ?immediate=true through without the secret.
	AllowImmediate bool
	Logger         *zap.Logger
}

// TriggerSecret compares "Authorization: Bearer <secret>" against the
// configured secret in constant time.
func TriggerSecret(cfg TriggerSecretConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	expected := []byte(cfg.Secret)

	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}
		if cfg.AllowImmediate {
			if immediate, _ := strconv.ParseBool(c.Query("immediate")); immediate {
				c.Next()
				return
			}
		}

		token, _ := bearerToken(c)
		if subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			log.Warn("Trigger secret mismatch",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Unauthorized", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
