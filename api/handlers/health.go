package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the database is reachable.
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Database ping failed")
			WriteResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, nil)
			return
		}
		WriteResponse(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
	}
}
