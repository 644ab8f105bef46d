package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eedm-api/student-services/internal/authn"
	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bearer(t *testing.T, claims authn.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestJWTMiddleware_PopulatesClaims(t *testing.T) {
	var got authn.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authn.FromContext(r.Context())
		require.True(t, ok)
		got = claims
		assert.NotEmpty(t, r.Context().Value(TokenKey))
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/academic-standings", nil)
	req.Header.Add("Authorization", bearer(t, authn.Claims{Username: "registrar"}))

	w := httptest.NewRecorder()
	JWTMiddleware(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "registrar", got.Username)
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})

	tests := map[string]string{
		"missing header": "",
		"not bearer":     "Basic dXNlcjpwYXNz",
		"invalid token":  "Bearer invalid-token",
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/terms", nil)
			if header != "" {
				req.Header.Add("Authorization", header)
			}

			w := httptest.NewRecorder()
			JWTMiddleware(next).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Access.Denied")
		})
	}
}

func TestWithLogger_SetsRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, http.StatusTeapot, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics)
	r.HandleFunc("/course-statuses/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/course-statuses/{id}", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/course-statuses/abc", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/course-statuses/{id}", "404"))
	assert.Equal(t, before+1, after)
}
