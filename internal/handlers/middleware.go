package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/apperrors"
	"github.com/migueg98/empleo-portal/internal/auth"
)

// renderError maps a domain error onto the wire. Errors that did not come
// from apperrors render as an opaque 500.
func renderError(c *gin.Context, err error) {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		c.JSON(de.HTTPStatus(), gin.H{
			"error": de.Message,
			"type":  string(de.Type),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "error interno, inténtalo de nuevo",
		"type":  string(apperrors.ErrTypeInternal),
	})
}

// WriteTimeout bounds every mutating request with the configured deadline.
// Reads are left unbounded: they answer from the in-memory caches.
func WriteTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSession gates the admin routes behind a valid bearer token.
func RequireSession(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.Validate(c.Request.Context(), c.GetHeader("Authorization")); err != nil {
			renderError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Recovery is the top-level boundary: a panic anywhere below becomes a
// generic recovery payload. The message is tailored by a text heuristic,
// separating "something failed to load" from backend/permission trouble.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path))

				message := "Ha ocurrido un error inesperado. Recarga la página o vuelve al inicio."
				text := strings.ToLower(fmt.Sprint(r))
				switch {
				case strings.Contains(text, "load") || strings.Contains(text, "fetch") ||
					strings.Contains(text, "connection"):
					message = "No se pudo cargar el recurso. Verifica tu conexión e inténtalo de nuevo."
				case strings.Contains(text, "permission") || strings.Contains(text, "denied") ||
					strings.Contains(text, "policy"):
					message = "No tienes permisos para realizar esta acción."
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":     message,
					"type":      string(apperrors.ErrTypeInternal),
					"recovered": true,
				})
			}
		}()
		c.Next()
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
