package services

import (
	"context"
	"encoding/json"

	"github.com/eedm-api/student-services/db"
	"github.com/eedm-api/student-services/models"
)

// Descriptor describes how a resource is exposed.
type Descriptor struct {
	// Name is the route segment, e.g. "academic-standings".
	Name string

	// EEDM resources are GUID keyed, versioned through the Accept header and
	// enriched with data-privacy and extended data. Legacy resources are not.
	EEDM bool

	// Versions lists the supported major versions, latest last.
	Versions []int

	ViewPermission   string
	UpdatePermission string

	// Writable resources accept POST and PUT. DELETE is never supported.
	Writable bool

	// Cached resources are small reference tables read whole and served from
	// the cache; by-id lookups scan the cached list.
	Cached bool

	Pageable bool
}

// LatestVersion returns the newest supported version.
func (d Descriptor) LatestVersion() int {
	if len(d.Versions) == 0 {
		return 1
	}
	return d.Versions[len(d.Versions)-1]
}

// SupportsVersion reports whether v is one of the supported versions.
func (d Descriptor) SupportsVersion(v int) bool {
	for _, supported := range d.Versions {
		if supported == v {
			return true
		}
	}
	return false
}

// Service is the coordination service behind one resource's routes.
type Service[T models.Resource] interface {
	Descriptor() Descriptor

	GetAll(ctx context.Context, bypassCache bool) ([]T, error)
	Get(ctx context.Context, id string, bypassCache bool) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) (T, error)

	// DataPrivacy returns the property paths the caller may not see.
	DataPrivacy(ctx context.Context, bypassCache bool) ([]string, error)

	// ExtendedData returns extension properties keyed by record id.
	ExtendedData(ctx context.Context, ids []string) (map[string]map[string]json.RawMessage, error)
}

// Store is the persistence used by the coordination services.
type Store interface {
	ListRecords(ctx context.Context, resource string) ([]json.RawMessage, error)
	GetRecord(ctx context.Context, resource, id string) (json.RawMessage, error)
	UpsertRecord(ctx context.Context, resource, id string, payload json.RawMessage) error
	GetPrivacyRules(ctx context.Context, resource string) ([]db.PrivacyRule, error)
	GetExtendedData(ctx context.Context, resource string, ids []string) (map[string]map[string]json.RawMessage, error)
}

var _ Store = (*db.StudentDB)(nil)
