package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/qualityveda/attendance-hub/internal/attendance"
	authsvc "github.com/qualityveda/attendance-hub/internal/auth"
	"github.com/qualityveda/attendance-hub/internal/catalog"
	"github.com/qualityveda/attendance-hub/internal/http/response"
	"github.com/qualityveda/attendance-hub/pkg/auth"
	"github.com/qualityveda/attendance-hub/pkg/config"
	"github.com/qualityveda/attendance-hub/pkg/logger"
)

type ctxKey string

const claimsKey ctxKey = "claims"

type Handlers struct {
	sessions *authsvc.Manager
	catalog  *catalog.Store
	records  *attendance.Store
	config   *config.Config
}

func New(sessions *authsvc.Manager, cat *catalog.Store, records *attendance.Store, cfg *config.Config) *Handlers {
	return &Handlers{
		sessions: sessions,
		catalog:  cat,
		records:  records,
		config:   cfg,
	}
}

// RequireJWT gates a route on a valid bearer token. Admins pass every role
// check.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != auth.RoleAdmin {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
