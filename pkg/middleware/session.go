package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voltage_wallet_demo/pkg/session"
)

const (
	SessionHeader = "X-Session-ID"
	sessionKey    = "session"
)

// SessionMiddleware resolves the X-Session-ID header to the caller's
// session, creating it on first use.
func SessionMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "session id is required in 'X-Session-ID' header"})
			c.Abort()
			return
		}
		logrus.Debugf("SessionMiddleware: session_id: %s", id)
		c.Set(sessionKey, sessions.Get(id))
		c.Next()
	}
}

// Session returns the session SessionMiddleware attached, or nil.
func Session(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
