package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/inklet/inklet/internal/service"
	"github.com/inklet/inklet/pkg/response"
)

type apiLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// APIRegister creates an account.
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body apiLoginRequest true "credentials"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *Handler) APIRegister(c *gin.Context) {
	var req apiLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}

	u, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		response.Created(c, gin.H{"id": u.ID, "username": u.Username})
	case errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, fmt.Sprintf("User %s is already registered.", req.Username))
	default:
		response.InternalError(c, err)
	}
}

// APILogin exchanges credentials for a bearer token.
// @Summary Log in and obtain a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body apiLoginRequest true "credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *Handler) APILogin(c *gin.Context) {
	var req apiLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}

	u, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnknownUsername) || errors.Is(err, service.ErrWrongPassword) {
			response.Unauthorized(c, "incorrect username or password")
			return
		}
		response.InternalError(c, err)
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	})
	signed, err := token.SignedString([]byte(h.tokenSecret))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token": signed,
		"user":  gin.H{"id": u.ID, "username": u.Username},
	})
}
