package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seichi-note/content-api/internal/models"
)

const actorContextKey = "actor"

// SessionProvider resolves the acting user of a request. A nil result
// means the request is unauthenticated. Session issuance itself is an
// upstream concern.
type SessionProvider interface {
	GetSession(c *gin.Context) *models.Actor
}

// HeaderSessionProvider trusts identity headers set by the upstream
// gateway (X-User-ID, X-Admin)
type HeaderSessionProvider struct{}

func (HeaderSessionProvider) GetSession(c *gin.Context) *models.Actor {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		return nil
	}
	return &models.Actor{
		UserID:  userID,
		IsAdmin: c.GetHeader("X-Admin") == "true",
	}
}

// sessionMiddleware rejects unauthenticated requests and stores the
// actor for handlers. The session is resolved fresh on every request,
// never cached across requests.
func sessionMiddleware(sessions SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := sessions.GetSession(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(actorContextKey, *actor)
		c.Next()
	}
}

// currentActor returns the actor stored by the session middleware
func currentActor(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}
