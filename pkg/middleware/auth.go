package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"SignBridge/pkg/errors"
	"SignBridge/pkg/response"
)

const sessionUserKey = "user_id"

// SetSessionUser stores the authenticated user id in the cookie session.
func SetSessionUser(c *gin.Context, userID string) error {
	s := sessions.Default(c)
	s.Set(sessionUserKey, userID)
	return s.Save()
}

// ClearSessionUser drops the session.
func ClearSessionUser(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	return s.Save()
}

// SessionUser returns the authenticated user id, if any.
func SessionUser(c *gin.Context) string {
	if v, ok := c.Get(sessionUserKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	s := sessions.Default(c)
	if v, ok := s.Get(sessionUserKey).(string); ok {
		return v
	}
	return ""
}

// RequireAuth aborts unauthenticated requests before any handler work.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		userID, _ := s.Get(sessionUserKey).(string)
		if userID == "" {
			response.FailErr(c, errors.WithCode(errors.CodeUnauthenticated, "Utilisateur non connecté"))
			c.Abort()
			return
		}
		c.Set(sessionUserKey, userID)
		c.Next()
	}
}
