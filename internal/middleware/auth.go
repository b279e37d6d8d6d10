package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kodbank/kodbank/pkg/tokenpkg"
	"github.com/kodbank/kodbank/pkg/web"

	"github.com/gin-gonic/gin"
)

// Keys and conventions used by the auth middleware.
const (
	AuthorizationHeaderKey  = "authorization"
	AuthorizationTypeBearer = "bearer"
	AuthUserIDKey           = "auth_user_id"
	TokenCookieName         = "bank_token"
)

// TokenVerifier checks an access token and returns its payload.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*tokenpkg.Payload, error)
}

// VerifierFunc adapts a function to the TokenVerifier interface.
type VerifierFunc func(ctx context.Context, token string) (*tokenpkg.Payload, error)

// Verify implements TokenVerifier.
func (f VerifierFunc) Verify(ctx context.Context, token string) (*tokenpkg.Payload, error) {
	return f(ctx, token)
}

// Auth validates the access token from the session cookie or the bearer
// header and stores the resolved user id in the request context. Handlers
// behind this middleware only ever see an authenticated caller.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		token, err := extractToken(gctx)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(web.CodeUnauthorized, err))
			return
		}

		payload, err := verifier.Verify(gctx.Request.Context(), token)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(web.CodeUnauthorized, errors.New("invalid or expired token")))
			return
		}

		gctx.Set(AuthUserIDKey, payload.UserID)
		gctx.Set(TokenCookieName, token)
		gctx.Next()
	}
}

func extractToken(gctx *gin.Context) (string, error) {
	if cookie, err := gctx.Cookie(TokenCookieName); err == nil && cookie != "" {
		return cookie, nil
	}

	authorizationHeader := gctx.GetHeader(AuthorizationHeaderKey)
	if len(authorizationHeader) == 0 {
		return "", errors.New("no token provided")
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 || strings.ToLower(fields[0]) != AuthorizationTypeBearer {
		return "", errors.New("invalid authorization header format")
	}

	return fields[1], nil
}

// AuthUserID returns the user id resolved by the Auth middleware.
func AuthUserID(gctx *gin.Context) int64 {
	return gctx.MustGet(AuthUserIDKey).(int64)
}

// AuthToken returns the raw token resolved by the Auth middleware.
func AuthToken(gctx *gin.Context) string {
	return gctx.MustGet(TokenCookieName).(string)
}
