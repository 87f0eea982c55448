package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/connectos/backend/internal/auth"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// Register creates a new account and returns a token
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Register(req)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		util.RespondValidationError(c, "email", "an account with this email already exists")
	case errors.Is(err, auth.ErrUsernameExists):
		util.RespondValidationError(c, "username", "this username is taken")
	case err != nil:
		util.RespondInternalError(c, "failed to create account")
	default:
		c.JSON(http.StatusCreated, resp)
	}
}

// Login authenticates with email and password
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(req)
	switch {
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidCredentials):
		util.RespondUnauthenticated(c, "invalid email or password")
	case err != nil:
		util.RespondInternalError(c, "failed to log in")
	default:
		c.JSON(http.StatusOK, resp)
	}
}

// GetMe returns the authenticated user's own record
// GET /api/v1/auth/me
func (h *Handlers) GetMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// AuthMiddleware validates the bearer token and loads the user into the
// request context under "user" and "user_id".
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondUnauthenticated(c, "no token provided")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		user, err := h.auth.ValidateToken(token)
		if err != nil {
			util.RespondUnauthenticated(c, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}
