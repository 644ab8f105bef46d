package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/eedm-api/student-services/api/services"
	"github.com/eedm-api/student-services/internal/appconfig"
	"github.com/eedm-api/student-services/internal/integration"
	"github.com/eedm-api/student-services/models"
	"github.com/rs/zerolog"
)

const (
	errorMediaType  = "application/vnd.hedtech.integration.errors.v2+json"
	legacyMediaType = "application/json"

	headerMediaType       = "X-Media-Type"
	headerTotalCount      = "X-Total-Count"
	headerContentRestrict = "X-Content-Restricted"
)

// WriteResponse writes a JSON body with the given status code and headers.
func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}, headers map[string]string) {

	w.Header().Set("Content-Type", legacyMediaType)

	// We don't want to cache API responses so the client receives most curent data
	w.Header().Set("Cache-Control", "max-age=0")

	for key, value := range headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	}
}

// BypassCache reports whether the caller sent Cache-Control: no-cache.
func BypassCache(r *http.Request) bool {
	for _, value := range r.Header.Values("Cache-Control") {
		for _, directive := range strings.Split(value, ",") {
			directive = strings.TrimSpace(directive)
			name, _, _ := strings.Cut(directive, "=")
			if strings.EqualFold(strings.TrimSpace(name), "no-cache") {
				return true
			}
		}
	}
	return false
}

// writeError converts err and writes it in the resource's error format.
func writeError(w http.ResponseWriter, r *http.Request, desc services.Descriptor, err error) {
	logger := zerolog.Ctx(r.Context())
	out := integration.Convert(err)

	event := logger.Warn()
	if out.Status >= http.StatusInternalServerError || (len(out.Errors) > 0 && out.Errors[0].Code == "Global.Internal.Error") {
		event = logger.Error()
	}
	event.Err(err).Str("resource", desc.Name).Int("status", out.Status).Msg("Request failed")

	if !desc.EEDM && out.Status != http.StatusMethodNotAllowed {
		WriteResponse(w, out.Status, models.LegacyErrorResponse{Message: out.Error()}, nil)
		return
	}
	WriteResponse(w, out.Status, out.Payload(), map[string]string{"Content-Type": errorMediaType})
}

type page struct {
	offset int
	limit  int
}

// parsePaging reads offset and limit for pageable resources. Resources that
// do not page return nil.
func parsePaging(r *http.Request, desc services.Descriptor, cfg appconfig.PagingConfig) (*page, error) {
	if !desc.Pageable {
		return nil, nil
	}

	p := &page{limit: cfg.DefaultLimit}
	query := r.URL.Query()

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, &integration.ArgumentError{Argument: "offset", Message: "must be a non-negative integer"}
		}
		p.offset = offset
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return nil, &integration.ArgumentError{Argument: "limit", Message: "must be a positive integer"}
		}
		p.limit = limit
	}

	if cfg.MaxLimit > 0 && p.limit > cfg.MaxLimit {
		p.limit = cfg.MaxLimit
	}
	return p, nil
}

func applyPage[T any](items []T, p *page) []T {
	if p == nil {
		return items
	}
	if p.offset >= len(items) {
		return []T{}
	}
	end := p.offset + p.limit
	if p.limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[p.offset:end]
}
