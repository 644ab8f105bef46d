package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/eedm-api/student-services/internal/authn"
	"github.com/eedm-api/student-services/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type tokenKey string

const TokenKey tokenKey = "token"

// RequestIDHeader carries the request id back to the caller.
const RequestIDHeader = "X-Request-ID"

// JWTMiddleware parses the JWT token and adds claims to the request context.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().
				Str("handler", "JWTMiddleware").Logger()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug().Msg("authorization header missing")
				unauthorized(w, "authorization header missing")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				logger.Error().Msg("invalid token format")
				unauthorized(w, "invalid token format")
				return
			}

			claims, err := authn.ParseClaims(token)
			if err != nil {
				logger.Error().Err(err).Msg("invalid bearer jwt token")
				unauthorized(w, "invalid bearer jwt token")
				return
			}

			ctx := authn.WithClaims(r.Context(), claims)
			ctx = context.WithValue(ctx, TokenKey, token)

			// Later log lines carry the caller
			logger = zerolog.Ctx(ctx).With().Str("user", claims.Username).Logger()
			ctx = logger.WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			logger := log.With().
				Str("request_id", requestID).
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Logger()

			start := time.Now()
			ctx := logger.WithContext(r.Context())
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.Info().
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		},
	)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.IntegrationErrorResponse{
		Errors: []models.IntegrationError{{Code: "Access.Denied", Message: message}},
	})
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
