package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/service"
)

// actorKey is the Gin context key holding the resolved actor.
const actorKey = "actor"

// sessionCookieMaxAge keeps the visitor cookie for one year.
const sessionCookieMaxAge = 365 * 24 * 3600

// SessionMiddleware resolves the visitor's session cookie to an Actor and
// stores it in the request context. A missing or unknown cookie mints a fresh
// session and sets the cookie on the response.
// Parameters:
//   - identity: identity resolver service.
//   - cookieName: name of the session cookie.
// Returns:
//   - gin.HandlerFunc: middleware handler.
func SessionMiddleware(identity *service.IdentityService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)

		actor, minted, err := identity.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.CtxError(c.Request.Context(), "Failed to resolve session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to resolve session",
			})
			return
		}
		if minted {
			c.SetCookie(cookieName, actor.SessionID, sessionCookieMaxAge, "/", "", false, true)
		}

		// Enrich the request logger with the actor identity
		ctx := logger.WithFields(c.Request.Context(), logger.Fields{
			logger.FieldSessionID: actor.SessionID,
		})
		if actor.IsRegistered() {
			ctx = logger.WithField(ctx, logger.FieldAccountID, actor.Account.ID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Set(actorKey, actor)
		c.Next()
	}
}

// GetActor extracts the resolved actor from the Gin context.
// Parameters:
//   - c: Gin request context.
// Returns:
//   - domain.Actor: resolved actor, zero value if middleware did not run.
func GetActor(c *gin.Context) domain.Actor {
	if v, exists := c.Get(actorKey); exists {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}
