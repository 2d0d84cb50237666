package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/migueg98/empleo-portal/internal/auth"
	"github.com/migueg98/empleo-portal/internal/dtos"
)

type AuthHandler struct {
	Sessions   *auth.Sessions
	SessionTTL time.Duration
}

func NewAuthHandler(sessions *auth.Sessions, ttl time.Duration) *AuthHandler {
	return &AuthHandler{Sessions: sessions, SessionTTL: ttl}
}

// Login is POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	token, err := h.Sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.SessionTTL),
	})
}

// Logout is POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token != "" {
		if err := h.Sessions.Logout(c.Request.Context(), token); err != nil {
			renderError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}
