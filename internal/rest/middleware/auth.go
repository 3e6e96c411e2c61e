package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/signalforge/signalforge/internal/config"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/types"
)

// AuthenticateMiddleware validates the Supabase-issued bearer token and
// puts the authenticated user id and email on the request context.
func AuthenticateMiddleware(cfg *config.Configuration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, ierr.NewError("missing bearer token").
				WithHint("Authorization header is required").
				Mark(ierr.ErrPermissionDenied))
			return
		}

		userID, email, err := validateSupabaseToken(token, cfg.Auth.Supabase.JWTSecret)
		if err != nil {
			log.Debugw("token validation failed", "error", err)
			abortUnauthorized(c, ierr.WithError(err).
				WithHint("Invalid or expired token").
				Mark(ierr.ErrPermissionDenied))
			return
		}

		ctx := context.WithValue(c.Request.Context(), types.CtxUserID, userID)
		ctx = context.WithValue(ctx, types.CtxUserEmail, email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func validateSupabaseToken(token string, secret string) (userID string, email string, err error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewErrorf("unexpected signing method: %v", t.Header["alg"]).
				Mark(ierr.ErrPermissionDenied)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", "", ierr.NewError("invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, _ = claims["sub"].(string)
	email, _ = claims["email"].(string)
	if userID == "" {
		return "", "", ierr.NewError("token has no subject").
			Mark(ierr.ErrPermissionDenied)
	}
	return userID, email, nil
}

func abortUnauthorized(c *gin.Context, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
