package middleware

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/pkg/httpcontext"
)

const bearerPrefix = "Bearer "

// JWTAuth verifies the bearer token and forwards its subject as the caller
// identity header. Handlers never touch the token themselves.
func JWTAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(secret)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			// never trust a client-supplied identity header
			ctx.Request.Header.Del(httpcontext.CallerHeader)

			subject, err := verify(extractToken(ctx), key)
			if err != nil {
				logger.Debug("rejected request token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set(httpcontext.CallerHeader, subject)
			next(ctx)
		}
	}
}

// verify parses the token and returns its subject. HMAC only; a token with
// any other signing method is rejected outright.
func verify(tokenString string, key []byte) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("missing token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	return strings.TrimPrefix(header, bearerPrefix)
}
