package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/inklet/inklet/internal/model"
	"github.com/inklet/inklet/internal/service"
)

const (
	// SessionName is the cookie holding the session.
	SessionName = "inklet_session"
	// SessionUserKey is the session value binding the cookie to a user id.
	SessionUserKey = "user_id"

	ctxUserKey = "currentUser"
)

// LoadUser resolves the session cookie into the authenticated user and
// attaches it to the request context. It never aborts; routes that need a
// user gate on LoginRequired.
func LoadUser(store sessions.Store, auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request, SessionName)
		if err == nil {
			if id, ok := sess.Values[SessionUserKey].(string); ok && id != "" {
				if u, uerr := auth.GetUser(c.Request.Context(), id); uerr == nil {
					c.Set(ctxUserKey, u)
				}
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user the session middleware resolved, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}

// SetUser is used by the JWT middleware and by tests to attach a resolved
// user to the request.
func SetUser(c *gin.Context, u *model.User) {
	c.Set(ctxUserKey, u)
}
