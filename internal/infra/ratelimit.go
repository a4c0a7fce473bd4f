package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/chat-server/internal/config"
	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit gates a route group per client IP using a sliding window. If the
// limiter backend is unavailable the request is let through; losing rate
// limiting is better than losing logins.
func RateLimit(limiter RateLimiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r), limit, window)
			if err != nil {
				logger_lib.FromContext(r.Context(), config.KeyLogger).Error(fmt.Sprintf("rate limiter unavailable: %v", err))
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				status, code, message := apperr.HTTP(apperr.RateLimited())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(model.ErrorResponse{Type: "error", Code: code, Message: message})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
