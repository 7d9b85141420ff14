// Package middleware holds the HTTP middleware shared by every route group.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/speakeasy-practice/backend/internal/auth"
	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/models"
)

// Auth rejects requests without a valid bearer token and stores the token's
// user ID in the request context.
func Auth(tokens *auth.Tokens) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			userID, err := tokens.Parse(tokenString)
			if err != nil {
				logger := logging.FromContext(r.Context())
				logger.Debug().Err(err).Msg("rejected token")
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := auth.WithUserID(r.Context(), userID)
			ctx = logging.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
