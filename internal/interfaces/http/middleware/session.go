package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
)

// SessionKey is the gin context key of the caller's identity.Session
const SessionKey = "session"

// SessionInitializer resolves a bearer token into a session
type SessionInitializer interface {
	Init(ctx context.Context, rawToken string) (identity.Session, error)
}

// SessionAuth requires a bearer token and stores the resolved session in
// the gin context. The request logger gains the session id.
func SessionAuth(sessions SessionInitializer) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessions.Init(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			status, info := dto.FromError(err)
			info.RequestID = c.GetString(RequestIDKey)
			logger.L(c.Request.Context()).Debug("session rejected")
			c.AbortWithStatusJSON(status, dto.NewErrorResponse(info))
			return
		}

		c.Set(SessionKey, session)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), session.ID))
		c.Next()
	}
}

// GetSession returns the session set by SessionAuth
func GetSession(c *gin.Context) (identity.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return identity.Session{}, false
	}
	session, ok := v.(identity.Session)
	return session, ok
}
