package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inklet/inklet/internal/middleware"
	"github.com/inklet/inklet/internal/service"
)

func (h *Handler) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Username": ""})
}

func (h *Handler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, err := h.auth.Register(c.Request.Context(), username, password)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/auth/login")
	case errors.Is(err, service.ErrUsernameRequired):
		h.flash(c, "Username is required.")
		h.render(c, http.StatusOK, "register.html", gin.H{"Username": username})
	case errors.Is(err, service.ErrPasswordRequired):
		h.flash(c, "Password is required.")
		h.render(c, http.StatusOK, "register.html", gin.H{"Username": username})
	case errors.Is(err, service.ErrUsernameTaken):
		h.flash(c, fmt.Sprintf("User %s is already registered.", username))
		h.render(c, http.StatusOK, "register.html", gin.H{"Username": username})
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Username": ""})
}

func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	u, err := h.auth.Login(c.Request.Context(), username, password)
	switch {
	case err == nil:
		sess, serr := h.store.Get(c.Request, middleware.SessionName)
		if serr != nil {
			h.serverError(c, serr)
			return
		}
		sess.Values[middleware.SessionUserKey] = u.ID
		if serr := sess.Save(c.Request, c.Writer); serr != nil {
			h.serverError(c, serr)
			return
		}
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, service.ErrUnknownUsername):
		h.flash(c, "Incorrect username.")
		h.render(c, http.StatusOK, "login.html", gin.H{"Username": username})
	case errors.Is(err, service.ErrWrongPassword):
		h.flash(c, "Incorrect password.")
		h.render(c, http.StatusOK, "login.html", gin.H{"Username": username})
	default:
		h.serverError(c, err)
	}
}

// Logout clears the session unconditionally.
func (h *Handler) Logout(c *gin.Context) {
	sess, err := h.store.Get(c.Request, middleware.SessionName)
	if err == nil {
		delete(sess.Values, middleware.SessionUserKey)
		sess.Options.MaxAge = -1
		_ = sess.Save(c.Request, c.Writer)
	}
	c.Redirect(http.StatusFound, "/")
}
