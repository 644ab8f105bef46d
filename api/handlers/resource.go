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
	"github.com/gorilla/mux"
)

// GetAll returns every record of a resource.
// @Summary List resource records
// @Description Returns every record of the resource. EEDM resources are paged with offset and limit when pageable.
// @Tags Resources
// @Produce json
// @Param resource path string true "Resource name"
// @Param offset query int false "Zero based offset"
// @Param limit query int false "Page size"
// @Param Cache-Control header string false "no-cache bypasses the cache"
// @Success 200 {array} object
// @Failure 400 {object} models.IntegrationErrorResponse
// @Failure 401 {object} models.IntegrationErrorResponse
// @Failure 403 {object} models.IntegrationErrorResponse
// @Failure 406 {object} models.IntegrationErrorResponse
// @Router /{resource} [get]
func GetAll[T models.Resource](svc services.Service[T], paging appconfig.PagingConfig) http.HandlerFunc {
	desc := svc.Descriptor()

	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePaging(r, desc, paging)
		if err != nil {
			writeError(w, r, desc, err)
			return
		}

		bypass := BypassCache(r)
		items, err := svc.GetAll(r.Context(), bypass)
		if err != nil {
			writeError(w, r, desc, err)
			return
		}
		if items == nil {
			items = []T{}
		}

		headers := map[string]string{}
		if p != nil {
			headers[headerTotalCount] = strconv.Itoa(len(items))
			items = applyPage(items, p)
		}

		writeRecords(w, r, svc, http.StatusOK, items, false, bypass, headers)
	}
}

// GetByID returns one record of a resource.
// @Summary Get a resource record
// @Description Returns the record with the given GUID (EEDM) or code (legacy).
// @Tags Resources
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record identifier"
// @Param Cache-Control header string false "no-cache bypasses the cache"
// @Success 200 {object} object
// @Failure 400 {object} models.IntegrationErrorResponse
// @Failure 404 {object} models.IntegrationErrorResponse
// @Router /{resource}/{id} [get]
func GetByID[T models.Resource](svc services.Service[T]) http.HandlerFunc {
	desc := svc.Descriptor()

	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(mux.Vars(r)["id"])
		if id == "" {
			writeError(w, r, desc, integration.MissingID())
			return
		}

		bypass := BypassCache(r)
		item, err := svc.Get(r.Context(), id, bypass)
		if err != nil {
			writeError(w, r, desc, err)
			return
		}

		writeRecords(w, r, svc, http.StatusOK, []T{item}, true, bypass, nil)
	}
}

// Create adds a record to a writable resource.
// @Summary Create a resource record
// @Description Creates a record. The body id must be empty or the nil GUID. Only writable resources accept this.
// @Tags Resources
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Success 201 {object} object
// @Failure 400 {object} models.IntegrationErrorResponse
// @Failure 405 {object} models.IntegrationErrorResponse
// @Router /{resource} [post]
func Create[T models.Resource](svc services.Service[T]) http.HandlerFunc {
	desc := svc.Descriptor()
	if !desc.Writable {
		return NotSupported(desc)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decodeBody(r, &item); err != nil {
			writeError(w, r, desc, err)
			return
		}

		created, err := svc.Create(r.Context(), item)
		if err != nil {
			writeError(w, r, desc, err)
			return
		}

		location := strings.TrimSuffix(r.URL.Path, "/") + "/" + created.Identifier()
		writeRecords(w, r, svc, http.StatusCreated, []T{created}, true, false, map[string]string{"Location": location})
	}
}

// Update replaces a record of a writable resource.
// @Summary Update a resource record
// @Description Replaces the record with the given id. The body id must be empty, the nil GUID or match the path.
// @Tags Resources
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record identifier"
// @Success 200 {object} object
// @Failure 400 {object} models.IntegrationErrorResponse
// @Failure 404 {object} models.IntegrationErrorResponse
// @Failure 405 {object} models.IntegrationErrorResponse
// @Router /{resource}/{id} [put]
func Update[T models.Resource](svc services.Service[T]) http.HandlerFunc {
	desc := svc.Descriptor()
	if !desc.Writable {
		return NotSupported(desc)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(mux.Vars(r)["id"])
		if id == "" {
			writeError(w, r, desc, integration.MissingID())
			return
		}

		var item T
		if err := decodeBody(r, &item); err != nil {
			writeError(w, r, desc, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, item)
		if err != nil {
			writeError(w, r, desc, err)
			return
		}

		writeRecords(w, r, svc, http.StatusOK, []T{updated}, true, false, nil)
	}
}

// NotSupported answers every verb a resource does not implement with the
// same payload.
// @Summary Unsupported operation
// @Tags Resources
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record identifier"
// @Failure 405 {object} models.IntegrationErrorResponse
// @Router /{resource}/{id} [delete]
func NotSupported(desc services.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, desc, integration.NotSupported())
	}
}

func decodeBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return &integration.ArgumentError{Argument: "body", Message: "request body is required"}
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return &integration.ArgumentError{Argument: "body", Message: "request body is not valid JSON: " + err.Error()}
	}
	return nil
}

// writeRecords writes items with the resource's media type. EEDM records have
// their private properties removed and extended data merged first.
func writeRecords[T models.Resource](w http.ResponseWriter, r *http.Request, svc services.Service[T], status int, items []T, single, bypass bool, headers map[string]string) {
	desc := svc.Descriptor()
	ctx := r.Context()

	if headers == nil {
		headers = map[string]string{}
	}
	contentType := mediaType(ctx, desc)
	headers["Content-Type"] = contentType

	if !desc.EEDM {
		if single {
			WriteResponse(w, status, items[0], headers)
		} else {
			WriteResponse(w, status, items, headers)
		}
		return
	}
	headers[headerMediaType] = contentType

	hidden, err := svc.DataPrivacy(ctx, bypass)
	if err != nil {
		writeError(w, r, desc, err)
		return
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Identifier())
	}
	extended := map[string]map[string]json.RawMessage{}
	if len(ids) > 0 {
		extended, err = svc.ExtendedData(ctx, ids)
		if err != nil {
			writeError(w, r, desc, err)
			return
		}
	}

	docs, err := toDocuments(items)
	if err != nil {
		writeError(w, r, desc, err)
		return
	}

	restricted := false
	for i, doc := range docs {
		for _, path := range hidden {
			if removePath(doc, path) {
				restricted = true
			}
		}
		mergeExtended(doc, extended[ids[i]])
	}
	if restricted {
		headers[headerContentRestrict] = "partial"
	}

	if single {
		WriteResponse(w, status, docs[0], headers)
		return
	}
	WriteResponse(w, status, docs, headers)
}
