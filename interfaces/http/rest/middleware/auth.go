package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"boardcore/pkg/auth"
	"boardcore/pkg/common"
)

// Authenticate creates an authentication middleware around a JWT
// validator. Requests carry rate limits per client IP before
// validation and per user after. Nil limiters fall back to in-memory
// sliding windows.
func Authenticate(validator *auth.JWTValidator, ipLimiter *auth.IPRateLimiter, userLimiter *auth.UserRateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	if ipLimiter == nil {
		ipLimiter = auth.NewIPRateLimiter(100)
	}
	if userLimiter == nil {
		userLimiter = auth.NewUserRateLimiter(200)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := ipLimiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Error("Rate limiter error", zap.Error(err))
				respondWithError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "Missing authentication token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)

				switch err {
				case auth.ErrExpiredToken:
					respondUnauthorized(w, "Token has expired")
				case auth.ErrInvalidSignature:
					respondUnauthorized(w, "Invalid token signature")
				default:
					respondUnauthorized(w, "Invalid token")
				}
				return
			}

			allowed, err = userLimiter.Allow(r.Context(), claims.UserID)
			if err != nil {
				logger.Error("User rate limiter error", zap.Error(err))
				respondWithError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "User rate limit exceeded")
				return
			}

			userCtx := &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			}

			ctx := auth.SetUserInContext(r.Context(), userCtx)
			ctx = common.WithUserID(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates middleware that requires one of the given roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				respondUnauthorized(w, "Unauthorized")
				return
			}

			for _, requiredRole := range roles {
				for _, userRole := range user.Roles {
					if userRole == requiredRole {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

// extractToken pulls the session token from the Authorization header,
// the auth cookie, or the token query parameter, in that order.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return authHeader
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    code,
	})
}
