package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/eedm-api/student-services/api/services"
	"github.com/eedm-api/student-services/internal/integration"
	"github.com/gorilla/mux"
)

type versionKey struct{}

var (
	eedmVersioned   = regexp.MustCompile(`^application/vnd\.hedtech\.integration\.v(\d+)(?:\.\d+\.\d+)?\+json$`)
	legacyVersioned = regexp.MustCompile(`^application/vnd\.ellucian\.v(\d+)\+json$`)
)

// Negotiate selects the representation version from the Accept header before
// the resource handler runs. An explicitly requested version the resource does
// not serve is answered with 406.
func Negotiate(desc services.Descriptor) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			version, err := negotiateVersion(desc, r.Header.Get("Accept"))
			if err != nil {
				writeError(w, r, desc, err)
				return
			}
			ctx := context.WithValue(r.Context(), versionKey{}, version)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func negotiateVersion(desc services.Descriptor, accept string) (int, error) {
	if strings.TrimSpace(accept) == "" {
		return desc.LatestVersion(), nil
	}

	var requested []int
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))

		switch mediaType {
		case "*/*", "application/*", "application/json":
			return desc.LatestVersion(), nil
		}

		if desc.EEDM && mediaType == "application/vnd.hedtech.integration+json" {
			return desc.LatestVersion(), nil
		}

		pattern := legacyVersioned
		if desc.EEDM {
			pattern = eedmVersioned
		}
		if m := pattern.FindStringSubmatch(mediaType); m != nil {
			v, _ := strconv.Atoi(m[1])
			if desc.SupportsVersion(v) {
				return v, nil
			}
			requested = append(requested, v)
		}
	}

	if len(requested) > 0 {
		return 0, integration.New(http.StatusNotAcceptable, "Global.UnsupportedVersion",
			fmt.Sprintf("version %d of %s is not supported", requested[0], desc.Name),
			fmt.Sprintf("supported versions: %v", desc.Versions))
	}
	return 0, integration.New(http.StatusNotAcceptable, "Global.UnsupportedMediaType",
		fmt.Sprintf("media type %q is not supported", accept), "")
}

// versionFrom returns the negotiated version, or the latest when none was negotiated.
func versionFrom(ctx context.Context, desc services.Descriptor) int {
	if v, ok := ctx.Value(versionKey{}).(int); ok {
		return v
	}
	return desc.LatestVersion()
}

// mediaType returns the Content-Type of a successful response.
func mediaType(ctx context.Context, desc services.Descriptor) string {
	if !desc.EEDM {
		return legacyMediaType
	}
	return fmt.Sprintf("application/vnd.hedtech.integration.v%d+json", versionFrom(ctx, desc))
}
