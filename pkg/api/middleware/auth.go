// Package middleware provides the HTTP middleware for FileVault's API:
// JWT authentication and rate-limit admission.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/auth"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/ratelimit"
)

type contextKey string

const principalContextKey contextKey = "principal"

// GetPrincipal retrieves the authenticated Principal from the request
// context. Returns nil if no principal is present, which is valid on
// routes wrapped with OptionalJWTAuth that received no bearer token.
func GetPrincipal(ctx context.Context) *model.Principal {
	p, ok := ctx.Value(principalContextKey).(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// JWTAuth validates a Bearer access token and stores the resulting
// Principal in the request context. Missing or invalid tokens get a
// 401 response in the API's standard error envelope.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				writeAuthError(w, "authorization header required")
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			principal := claims.Principal()
			ctx := context.WithValue(r.Context(), principalContextKey, &principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTAuth is like JWTAuth but never rejects the request; a
// missing or invalid token simply leaves the context without a
// Principal, used on routes with a public (anonymous) path.
func OptionalJWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			principal := claims.Principal()
			ctx := context.WithValue(r.Context(), principalContextKey, &principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin blocks non-admin callers. Must follow JWTAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil {
				writeAuthError(w, "authentication required")
				return
			}
			if !p.IsAdmin() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":"authorization","message":"admin access required"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit admits or denies the request against limiter, keyed by the
// authenticated Principal (or client IP when anonymous). Denials write
// a 403/429 response with Retry-After set when the limiter returns one.
func RateLimit(limiter *ratelimit.Limiter, action ratelimit.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			principal := GetPrincipal(r.Context())
			decision, err := limiter.Check(r.Context(), principal, clientIP(r), action)
			if err != nil {
				writeRateLimitError(w, err, 0)
				return
			}
			if !decision.Allowed {
				writeRateLimitError(w, nil, decision.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"authentication","message":"` + message + `"}}`))
}

func writeRateLimitError(w http.ResponseWriter, err error, retryAfter time.Duration) {
	status := http.StatusTooManyRequests
	code := "rate_limited"
	message := "rate limit exceeded"

	if err != nil {
		status = http.StatusForbidden
		code = "authorization"
		message = err.Error()
	}

	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
