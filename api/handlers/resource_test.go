package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eedm-api/student-services/api/services"
	"github.com/eedm-api/student-services/internal/appconfig"
	"github.com/eedm-api/student-services/internal/integration"
	"github.com/eedm-api/student-services/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	goodStandingID = "7b5a2a6e-3f5e-4a55-9d1b-2d2c1c7b0a01"
	probationID    = "8c6b3b7f-4a6f-4b66-8e2c-3e3d2d8c1b02"
	requestID      = "2f1d7c1e-9a7b-4f0e-8b52-0d8f8a9c3e11"
)

var testPaging = appconfig.PagingConfig{DefaultLimit: 2, MaxLimit: 5}

func standings() []models.AcademicStanding {
	return []models.AcademicStanding{
		{CodeItem: models.CodeItem{ID: goodStandingID, Code: "GS", Title: "Good Standing", Description: "In good standing"}},
		{CodeItem: models.CodeItem{ID: probationID, Code: "PR", Title: "Probation"}},
	}
}

func newStandingService() *services.MockService[models.AcademicStanding] {
	return &services.MockService[models.AcademicStanding]{Desc: services.AcademicStandings}
}

func newRouter[T models.Resource](svc services.Service[T]) *mux.Router {
	r := mux.NewRouter()
	Register(r, svc, testPaging)
	return r
}

func serve(router http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeErrors(t *testing.T, rr *httptest.ResponseRecorder) models.IntegrationErrorResponse {
	t.Helper()
	var payload models.IntegrationErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Errors)
	return payload
}

func TestGetAll_EmptyList(t *testing.T) {
	svc := newStandingService()
	svc.On("GetAll", mock.Anything, false).Return(nil, nil)
	svc.On("DataPrivacy", mock.Anything, false).Return(nil, nil)

	rr := serve(newRouter[models.AcademicStanding](svc), http.MethodGet, "/academic-standings", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	assert.Equal(t, "application/vnd.hedtech.integration.v6+json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "application/vnd.hedtech.integration.v6+json", rr.Header().Get("X-Media-Type"))
	assert.Equal(t, "max-age=0", rr.Header().Get("Cache-Control"))
	svc.AssertNotCalled(t, "ExtendedData", mock.Anything, mock.Anything)
}

func TestGetAll_PopulatedList(t *testing.T) {
	svc := newStandingService()
	svc.On("GetAll", mock.Anything, false).Return(standings(), nil)
	svc.On("DataPrivacy", mock.Anything, false).Return(nil, nil)
	svc.On("ExtendedData", mock.Anything, []string{goodStandingID, probationID}).Return(nil, nil)

	rr := serve(newRouter[models.AcademicStanding](svc), http.MethodGet, "/academic-standings", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "GS", body[0]["code"])
	assert.Empty(t, rr.Header().Get("X-Content-Restricted"))
	assert.Empty(t, rr.Header().Get("X-Total-Count"))
}

func TestGetAll_NoCacheHeaderBypassesCache(t *testing.T) {
	svc := newStandingService()
	svc.On("GetAll", mock.Anything, true).Return(nil, nil)
	svc.On("DataPrivacy", mock.Anything, true).Return(nil, nil)

	rr := serve(newRouter[models.AcademicStanding](svc), http.MethodGet, "/academic-standings", "",
		map[string]string{"Cache-Control": "no-cache"})

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestGetAll_ServiceError(t *testing.T) {
	svc := newStandingService()
	svc.On("GetAll", mock.Anything, false).Return(nil, &integration.RepositoryError{Err: assert.AnError})

	rr := serve(newRouter[models.AcademicStanding](svc), http.MethodGet, "/academic-standings", "", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, errorMediaType, rr.Header().Get("Content-Type"))
	assert.Equal(t, "Global.Internal.Error", decodeErrors(t, rr).Errors[0].Code)
}

func TestGetAll_Forbidden(t *testing.T) {
	svc := &services.MockService[models.StudentTestScore]{Desc: services.StudentTestScores}
	svc.On("GetAll", mock.Anything, false).Return(nil, &integration.PermissionsError{Permission: "VIEW.STUDENT.TEST.SCORES"})

	rr := serve(newRouter[models.StudentTestScore](svc), http.MethodGet, "/student-test-scores", "", nil)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Access.Denied", decodeErrors(t, rr).Errors[0].Code)
}

func mealPlanRequests(n int) []models.MealPlanRequest {
	ids := []string{
		"0a6f3f0e-1c1e-4b55-9a0e-6a1d2b3c4d01",
		"0a6f3f0e-1c1e-4b55-9a0e-6a1d2b3c4d02",
		"0a6f3f0e-1c1e-4b55-9a0e-6a1d2b3c4d03",
	}
	out := make([]models.MealPlanRequest, 0, n)
	for _, id := range ids[:n] {
		out = append(out, models.MealPlanRequest{ID: id, Status: "submitted"})
	}
	return out
}

func TestGetAll_Paging(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantIDs []int
	}{
		{name: "default limit", query: "", wantIDs: []int{0, 1}},
		{name: "offset and limit", query: "?offset=1&limit=1", wantIDs: []int{1}},
		{name: "offset past end", query: "?offset=10", wantIDs: []int{}},
		{name: "limit clamped", query: "?limit=50", wantIDs: []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := mealPlanRequests(3)
			var wantIDs []string
			for _, i := range tt.wantIDs {
				wantIDs = append(wantIDs, all[i].ID)
			}

			svc := &services.MockService[models.MealPlanRequest]{Desc: services.MealPlanRequests}
			svc.On("GetAll", mock.Anything, false).Return(all, nil)
			svc.On("DataPrivacy", mock.Anything, false).Return(nil, nil)
			svc.On("ExtendedData", mock.Anything, mock.Anything).Return(nil, nil)

			rr := serve(newRouter[models.MealPlanRequest](svc), http.MethodGet, "/meal-plan-requests"+tt.query, "", nil)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "3", rr.Header().Get("X-Total-Count"))

			var body []models.MealPlanRequest
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			gotIDs := []string{}
			for _, item := range body {
				gotIDs = append(gotIDs, item.ID)
			}
			if wantIDs == nil {
				wantIDs = []string{}
			}
			assert.Equal(t, wantIDs, gotIDs)
		})
	}
}

func TestGetAll_InvalidPaging(t *testing.T) {
	for _, query := range []string{"?limit=abc", "?limit=0", "?offset=-1"} {
		t.Run(query, func(t *testing.T) {
			svc := &services.MockService[models.MealPlanRequest]{Desc: services.MealPlanRequests}

			rr := serve(newRouter[models.MealPlanRequest](svc), http.MethodGet, "/meal-plan-requests"+query, "", nil)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "Validation.Exception", decodeErrors(t, rr).Errors[0].Code)
			svc.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything)
		})
	}
}

func TestGetByID_BlankID(t *testing.T) {
	svc := newStandingService()
	handler := GetByID[models.AcademicStanding](svc)

	for _, id := range []string{"", "   "} {
		req := httptest.NewRequest(http.MethodGet, "/academic-standings/", nil)
		req = mux.SetURLVars(req, map[string]string{"id": id})
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Missing.Request.ID", decodeErrors(t, rr).Errors[0].Code)
	}
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newStandingService()
	svc.On("Get", mock.Anything, "missing", false).
		Return(models.AcademicStanding{}, integration.NotFound("academic-standings", "missing"))

	rr := serve(newRouter[models.AcademicStanding](svc), http.MethodGet, "/academic-standings/missing", "", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	payload := decodeErrors(t, rr)
	assert.Equal(t, "GUID.Not.Found", payload.Errors[0].Code)
	assert.Equal(t, "missing", payload.Errors[0].GUID)
}

func TestGetByID_PrivacyAndExtendedData(t *testing.T) {
	svc := newStandingService()
	svc.On("Get", mock.Anything, goodStandingID, true).Return(standings()[0], nil)
	svc.On("DataPrivacy", mock.Anything, true).Return([]string{"description", "notOnRecord"}, nil)
	svc.On("ExtendedData", mock.Anything, []string{goodStandingID}).Return(map[string]map[string]json.RawMessage{
		goodStandingID: {
			"externalCode": json.RawMessage(`"EXT-GS"`),
			"code":         json.RawMessage(`"ignored"`),
		},
	}, nil)

	rr := serve(newRouter[models.AcademicStanding](svc), http.MethodGet, "/academic-standings/"+goodStandingID, "",
		map[string]string{"Cache-Control": "no-cache, no-store"})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "partial", rr.Header().Get("X-Content-Restricted"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotContains(t, body, "description")
	assert.Equal(t, "EXT-GS", body["externalCode"])
	assert.Equal(t, "GS", body["code"])
}

func TestNotSupported_IdenticalPayload(t *testing.T) {
	standingsSvc := newStandingService()
	requestsSvc := &services.MockService[models.MealPlanRequest]{Desc: services.MealPlanRequests}
	termsSvc := &services.MockService[models.Term]{Desc: services.Terms}

	router := mux.NewRouter()
	Register[models.AcademicStanding](router, standingsSvc, testPaging)
	Register[models.MealPlanRequest](router, requestsSvc, testPaging)
	Register[models.Term](router, termsSvc, testPaging)

	calls := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPost, "/academic-standings", `{"id":"00000000-0000-0000-0000-000000000000"}`},
		{http.MethodPut, "/academic-standings/" + goodStandingID, `{"id":"` + goodStandingID + `"}`},
		{http.MethodDelete, "/academic-standings/" + goodStandingID, ""},
		{http.MethodDelete, "/meal-plan-requests/" + requestID, ""},
		{http.MethodPost, "/terms", `{"Code":"2024FA"}`},
		{http.MethodPut, "/terms/2024FA", `{"Code":"2024FA"}`},
		{http.MethodDelete, "/terms/2024FA", ""},
	}

	var first string
	for _, c := range calls {
		rr := serve(router, c.method, c.target, c.body, nil)

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, "%s %s", c.method, c.target)
		assert.Equal(t, errorMediaType, rr.Header().Get("Content-Type"))
		if first == "" {
			first = rr.Body.String()
			assert.Equal(t, "Invalid.Operation", decodeErrors(t, rr).Errors[0].Code)
			continue
		}
		assert.Equal(t, first, rr.Body.String(), "%s %s", c.method, c.target)
	}

	standingsSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	termsSvc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_MealPlanRequest(t *testing.T) {
	svc := &services.MockService[models.MealPlanRequest]{Desc: services.MealPlanRequests}
	created := models.MealPlanRequest{ID: requestID, Status: "submitted"}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(m models.MealPlanRequest) bool {
		return m.ID == models.NilGUID && m.Status == "submitted"
	})).Return(created, nil)
	svc.On("DataPrivacy", mock.Anything, false).Return(nil, nil)
	svc.On("ExtendedData", mock.Anything, []string{requestID}).Return(nil, nil)

	rr := serve(newRouter[models.MealPlanRequest](svc), http.MethodPost, "/meal-plan-requests",
		`{"id":"00000000-0000-0000-0000-000000000000","status":"submitted","person":{"id":"p1"},"mealPlan":{"id":"m1"}}`,
		map[string]string{"Accept": "application/vnd.hedtech.integration.v10+json"})

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/meal-plan-requests/"+requestID, rr.Header().Get("Location"))
	assert.Equal(t, "application/vnd.hedtech.integration.v10+json", rr.Header().Get("Content-Type"))

	var body models.MealPlanRequest
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, requestID, body.ID)
}

func TestCreate_InvalidBody(t *testing.T) {
	svc := &services.MockService[models.MealPlanRequest]{Desc: services.MealPlanRequests}

	rr := serve(newRouter[models.MealPlanRequest](svc), http.MethodPost, "/meal-plan-requests", `{"id":`, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate_MealPlanRequest(t *testing.T) {
	svc := &services.MockService[models.MealPlanRequest]{Desc: services.MealPlanRequests}
	updated := models.MealPlanRequest{ID: requestID, Status: "approved"}
	svc.On("Update", mock.Anything, requestID, mock.Anything).Return(updated, nil)
	svc.On("DataPrivacy", mock.Anything, false).Return(nil, nil)
	svc.On("ExtendedData", mock.Anything, []string{requestID}).Return(nil, nil)

	rr := serve(newRouter[models.MealPlanRequest](svc), http.MethodPut, "/meal-plan-requests/"+requestID,
		`{"id":"`+requestID+`","status":"approved"}`, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var body models.MealPlanRequest
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "approved", body.Status)
}

func TestUpdate_GUIDMismatch(t *testing.T) {
	svc := &services.MockService[models.MealPlanRequest]{Desc: services.MealPlanRequests}
	svc.On("Update", mock.Anything, requestID, mock.Anything).
		Return(models.MealPlanRequest{}, &integration.ArgumentError{Argument: "id", Message: "does not match", Code: "GUID.Mismatch"})

	rr := serve(newRouter[models.MealPlanRequest](svc), http.MethodPut, "/meal-plan-requests/"+requestID,
		`{"id":"`+goodStandingID+`","status":"approved"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "GUID.Mismatch", decodeErrors(t, rr).Errors[0].Code)
}

func TestLegacy_ResponseAndErrors(t *testing.T) {
	svc := &services.MockService[models.Term]{Desc: services.Terms}
	svc.On("GetAll", mock.Anything, false).Return([]models.Term{{Code: "2024FA", Description: "Fall 2024"}}, nil)
	svc.On("Get", mock.Anything, "1999SP", false).Return(models.Term{}, integration.NotFound("terms", "1999SP"))
	router := newRouter[models.Term](svc)

	rr := serve(router, http.MethodGet, "/terms", "", map[string]string{"Accept": "application/vnd.ellucian.v1+json"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Empty(t, rr.Header().Get("X-Media-Type"))
	assert.JSONEq(t, `[{"Code":"2024FA","Description":"Fall 2024","StartDate":"","EndDate":"","ReportingYear":0,"Sequence":0,"DefaultOnPlan":false}]`, rr.Body.String())

	rr = serve(router, http.MethodGet, "/terms/1999SP", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var legacy models.LegacyErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &legacy))
	assert.Contains(t, legacy.Message, "1999SP")

	svc.AssertNotCalled(t, "DataPrivacy", mock.Anything, mock.Anything)
}

func TestVersionNegotiation(t *testing.T) {
	tests := []struct {
		accept   string
		status   int
		wantCode string
	}{
		{accept: "application/vnd.hedtech.integration.v6+json", status: http.StatusOK},
		{accept: "application/vnd.hedtech.integration.v6.1.0+json", status: http.StatusOK},
		{accept: "application/vnd.hedtech.integration+json", status: http.StatusOK},
		{accept: "application/json", status: http.StatusOK},
		{accept: "application/vnd.hedtech.integration.v5+json, */*;q=0.1", status: http.StatusOK},
		{accept: "application/vnd.hedtech.integration.v5+json", status: http.StatusNotAcceptable, wantCode: "Global.UnsupportedVersion"},
		{accept: "text/html", status: http.StatusNotAcceptable, wantCode: "Global.UnsupportedMediaType"},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			svc := newStandingService()
			svc.On("GetAll", mock.Anything, false).Return(nil, nil)
			svc.On("DataPrivacy", mock.Anything, false).Return(nil, nil)

			rr := serve(newRouter[models.AcademicStanding](svc), http.MethodGet, "/academic-standings", "",
				map[string]string{"Accept": tt.accept})

			assert.Equal(t, tt.status, rr.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeErrors(t, rr).Errors[0].Code)
				svc.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestBypassCache(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"no-cache", true},
		{"No-Cache", true},
		{"max-age=0, no-cache", true},
		{"no-store", false},
		{"max-age=0", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Cache-Control", tt.header)
		}
		assert.Equal(t, tt.want, BypassCache(req), tt.header)
	}
}
