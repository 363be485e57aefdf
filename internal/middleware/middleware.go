// Package middleware holds the gin middleware shared by every route.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/logger"
	"household-budget-backend/internal/models"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger assigns a request id, stores a request scoped logger in the
// request context and logs every request on completion.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		log := base.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.ClientIP()).
			Msg("HTTP request")
	}
}

// Identity resolves the user and puts it on the request context. Requests
// without one stop here with 401.
func Identity(a auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := a.Authenticate(c.Request)
		if err != nil {
			log := logger.FromContext(c.Request.Context())
			log.Debug().Err(err).Msg("authentication failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		ctx := auth.WithUser(c.Request.Context(), userID)
		log := logger.FromContext(ctx).With().Str("user_id", userID.String()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx, log))
		c.Next()
	}
}

// RoleChecker is the hasRole procedure.
type RoleChecker interface {
	HasRole(ctx context.Context, role models.AppRole) (bool, error)
}

// RequireRole lets the request through only for users holding role.
func RequireRole(rc RoleChecker, role models.AppRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := rc.HasRole(c.Request.Context(), role)
		if err != nil {
			log := logger.FromContext(c.Request.Context())
			log.Error().Err(err).Str("role", string(role)).Msg("role check failed")
			c.AbortWithStatusJSON(apperr.StatusCode(err), gin.H{"error": "could not check permissions"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
