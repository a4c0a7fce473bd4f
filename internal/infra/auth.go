package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/s21platform/chat-server/internal/config"
	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
	"github.com/s21platform/chat-server/internal/pkg/jwt"
)

type TokenVerifier interface {
	Verify(tokenString string) (*jwt.Claims, error)
}

// AuthHTTP is the session gate for REST calls: it strips the required Bearer
// prefix, verifies the token, and requires an access credential. On success
// the caller's id and username are stored in the request context; on any
// failure the request never reaches the handler.
func AuthHTTP(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeUnauthorized(w, "missing access token")
				return
			}

			claims, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			if claims.TokenType != string(jwt.KindAccess) {
				writeUnauthorized(w, "not a valid access token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), config.KeyUUID, userID.String())
			ctx = context.WithValue(ctx, config.KeyUsername, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Type:    "error",
		Code:    apperr.KindUnauthorized.Code(),
		Message: message,
	})
}
