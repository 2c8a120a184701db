package v1

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	personIDHeader     = "X-Person-ID"
	actingPersonCtxKey = "acting_person_id"
)

// APIKeyAuthMiddleware - middleware для аутентификации по API-ключу
func APIKeyAuthMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			// Проверяем также заголовок Authorization: Bearer
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				apiKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if apiKey == "" {
			log.Warn("API key missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
			return
		}

		if !validAPIKey(cfg.APIKeys, apiKey) {
			log.WithField("path", c.FullPath()).Warn("Invalid API key provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		c.Next()
	}
}

func validAPIKey(keys []string, apiKey string) bool {
	for _, key := range keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			return true
		}
	}
	return false
}

// ActingPersonMiddleware кладет в контекст ID участника из заголовка X-Person-ID.
// От его роли зависит множество допустимых переходов.
func ActingPersonMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(personIDHeader)
		if raw == "" {
			log.Warn("Acting person missing from request")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": personIDHeader + " header required"})
			return
		}

		personID, err := uuid.Parse(raw)
		if err != nil {
			log.WithError(err).Warn("Invalid acting person ID")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + personIDHeader + " header"})
			return
		}

		c.Set(actingPersonCtxKey, personID)
		c.Next()
	}
}

// actingPerson возвращает ID участника, установленный ActingPersonMiddleware
func actingPerson(c *gin.Context) uuid.UUID {
	if value, ok := c.Get(actingPersonCtxKey); ok {
		if id, ok := value.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
