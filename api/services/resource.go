package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/eedm-api/student-services/db"
	"github.com/eedm-api/student-services/internal/authn"
	"github.com/eedm-api/student-services/internal/cache"
	"github.com/eedm-api/student-services/internal/events"
	"github.com/eedm-api/student-services/internal/integration"
	"github.com/eedm-api/student-services/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// ResourceService serves one resource from the store, through the cache.
type ResourceService[T models.Resource] struct {
	desc     Descriptor
	store    Store
	cache    cache.Cache
	notifier events.Notifier
}

var _ Service[models.AcademicStanding] = (*ResourceService[models.AcademicStanding])(nil)

func NewResourceService[T models.Resource](desc Descriptor, store Store, c cache.Cache, n events.Notifier) *ResourceService[T] {
	if c == nil {
		c = cache.Noop{}
	}
	if n == nil {
		n = events.Discard{}
	}
	return &ResourceService[T]{
		desc:     desc,
		store:    store,
		cache:    c,
		notifier: n,
	}
}

func (s *ResourceService[T]) Descriptor() Descriptor {
	return s.desc
}

// GetAll returns every record of the resource. A bypass read skips the cache
// lookup but still refreshes the cached copy.
func (s *ResourceService[T]) GetAll(ctx context.Context, bypassCache bool) ([]T, error) {
	logger := zerolog.Ctx(ctx)

	if err := checkPermission(ctx, s.desc.ViewPermission); err != nil {
		return nil, err
	}

	key := cache.Key(s.desc.Name, "all")
	if !bypassCache {
		var cached []T
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn().Err(err).Str("resource", s.desc.Name).Msg("Cache read failed, falling back to store")
		} else if found {
			logger.Debug().Str("resource", s.desc.Name).Int("count", len(cached)).Msg("Served from cache")
			return nonNil(cached), nil
		}
	}

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, items); err != nil {
		logger.Warn().Err(err).Str("resource", s.desc.Name).Msg("Cache write failed")
	}
	return items, nil
}

// Get returns one record or a KeyNotFoundError.
func (s *ResourceService[T]) Get(ctx context.Context, id string, bypassCache bool) (T, error) {
	var zero T

	if strings.TrimSpace(id) == "" {
		return zero, integration.MissingID()
	}

	if s.desc.Cached {
		items, err := s.GetAll(ctx, bypassCache)
		if err != nil {
			return zero, err
		}
		for _, item := range items {
			if item.Identifier() == id {
				return item, nil
			}
		}
		return zero, integration.NotFound(s.desc.Name, id)
	}

	if err := checkPermission(ctx, s.desc.ViewPermission); err != nil {
		return zero, err
	}

	raw, err := s.store.GetRecord(ctx, s.desc.Name, id)
	if err != nil {
		return zero, &integration.RepositoryError{Err: err}
	}
	if raw == nil {
		return zero, integration.NotFound(s.desc.Name, id)
	}

	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return zero, &integration.RepositoryError{Err: fmt.Errorf("decoding %s %s: %w", s.desc.Name, id, err)}
	}
	return item, nil
}

// Create stores a new record under a freshly assigned GUID.
func (s *ResourceService[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T

	mutable, ok := any(&item).(models.Mutable)
	if !s.desc.Writable || !ok {
		return zero, integration.NotSupported()
	}

	if err := checkPermission(ctx, s.desc.UpdatePermission); err != nil {
		return zero, err
	}

	if id := item.Identifier(); id != "" && id != models.NilGUID {
		return zero, &integration.ArgumentError{
			Argument: "id",
			Message:  "the id must be the nil GUID when creating a record",
			Code:     "GUID.Wrong.Format",
		}
	}

	id := uuid.NewString()
	mutable.SetIdentifier(id)

	if err := s.save(ctx, id, item, events.OperationCreated); err != nil {
		return zero, err
	}
	return item, nil
}

// Update replaces an existing record. The body id must be empty, the nil GUID
// or equal to the route id.
func (s *ResourceService[T]) Update(ctx context.Context, id string, item T) (T, error) {
	var zero T

	mutable, ok := any(&item).(models.Mutable)
	if !s.desc.Writable || !ok {
		return zero, integration.NotSupported()
	}

	if strings.TrimSpace(id) == "" {
		return zero, integration.MissingID()
	}

	if err := checkPermission(ctx, s.desc.UpdatePermission); err != nil {
		return zero, err
	}

	if s.desc.EEDM {
		if _, err := uuid.Parse(id); err != nil {
			return zero, &integration.ArgumentError{Argument: "id", Message: "the id must be a GUID", Code: "GUID.Wrong.Format"}
		}
	}

	switch bodyID := item.Identifier(); bodyID {
	case "", models.NilGUID:
		mutable.SetIdentifier(id)
	case id:
	default:
		return zero, &integration.ArgumentError{
			Argument: "id",
			Message:  "the id in the body does not match the id in the request URL",
			Code:     "GUID.Mismatch",
		}
	}

	existing, err := s.store.GetRecord(ctx, s.desc.Name, id)
	if err != nil {
		return zero, &integration.RepositoryError{Err: err}
	}
	if existing == nil {
		return zero, integration.NotFound(s.desc.Name, id)
	}

	if err := s.save(ctx, id, item, events.OperationReplaced); err != nil {
		return zero, err
	}
	return item, nil
}

// DataPrivacy returns the properties hidden from the caller, sorted.
func (s *ResourceService[T]) DataPrivacy(ctx context.Context, bypassCache bool) ([]string, error) {
	if !s.desc.EEDM {
		return nil, nil
	}

	logger := zerolog.Ctx(ctx)
	key := cache.Key(s.desc.Name, "privacy")

	var rules []db.PrivacyRule
	found := false
	if !bypassCache {
		var err error
		found, err = s.cache.Get(ctx, key, &rules)
		if err != nil {
			logger.Warn().Err(err).Str("resource", s.desc.Name).Msg("Cache read failed, falling back to store")
		}
	}

	if !found {
		var err error
		rules, err = s.store.GetPrivacyRules(ctx, s.desc.Name)
		if err != nil {
			return nil, &integration.RepositoryError{Err: err}
		}
		if err := s.cache.Set(ctx, key, rules); err != nil {
			logger.Warn().Err(err).Str("resource", s.desc.Name).Msg("Cache write failed")
		}
	}

	claims, _ := authn.FromContext(ctx)

	var hidden []string
	for _, rule := range rules {
		if !claims.HasPermission(rule.Permission) {
			hidden = append(hidden, rule.Property)
		}
	}
	sort.Strings(hidden)
	return hidden, nil
}

func (s *ResourceService[T]) ExtendedData(ctx context.Context, ids []string) (map[string]map[string]json.RawMessage, error) {
	if !s.desc.EEDM || len(ids) == 0 {
		return nil, nil
	}

	data, err := s.store.GetExtendedData(ctx, s.desc.Name, ids)
	if err != nil {
		return nil, &integration.RepositoryError{Err: err}
	}
	return data, nil
}

func (s *ResourceService[T]) load(ctx context.Context) ([]T, error) {
	raw, err := s.store.ListRecords(ctx, s.desc.Name)
	if err != nil {
		return nil, &integration.RepositoryError{Err: err}
	}

	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, &integration.RepositoryError{Err: fmt.Errorf("decoding %s: %w", s.desc.Name, err)}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *ResourceService[T]) save(ctx context.Context, id string, item T, operation string) error {
	logger := zerolog.Ctx(ctx)

	if err := validate.StructCtx(ctx, item); err != nil {
		return &integration.ArgumentError{Argument: s.desc.Name, Message: err.Error()}
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", s.desc.Name, id, err)
	}

	if err := s.store.UpsertRecord(ctx, s.desc.Name, id, payload); err != nil {
		return &integration.RepositoryError{Err: err}
	}

	if err := s.cache.InvalidateResource(ctx, s.desc.Name); err != nil {
		logger.Warn().Err(err).Str("resource", s.desc.Name).Msg("Cache invalidation failed")
	}

	err = s.notifier.Notify(ctx, events.ChangeNotification{
		Resource:  s.desc.Name,
		ID:        id,
		Operation: operation,
	})
	if err != nil {
		logger.Error().Err(err).Str("resource", s.desc.Name).Str("id", id).Msg("Failed to publish change notification")
	}

	logger.Info().Str("resource", s.desc.Name).Str("id", id).Str("operation", operation).Msg("Record saved")
	return nil
}

// checkPermission fails when a permission is required and the caller lacks it.
func checkPermission(ctx context.Context, permission string) error {
	if permission == "" {
		return nil
	}

	claims, ok := authn.FromContext(ctx)
	if !ok {
		return &integration.PermissionsError{Permission: permission, Anonymous: true}
	}
	if !claims.HasPermission(permission) {
		return &integration.PermissionsError{Permission: permission}
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Warm reloads the resource from the store into the cache. It runs outside a
// request so no permission is checked.
func (s *ResourceService[T]) Warm(ctx context.Context) (int, error) {
	items, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, cache.Key(s.desc.Name, "all"), items); err != nil {
		return 0, err
	}
	return len(items), nil
}
