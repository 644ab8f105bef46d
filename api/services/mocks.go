package services

import (
	"context"
	"encoding/json"

	"github.com/eedm-api/student-services/db"
	"github.com/eedm-api/student-services/internal/events"
	"github.com/eedm-api/student-services/models"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

type MockCache struct {
	mock.Mock
}

type MockNotifier struct {
	mock.Mock
}

// MockService stands in for a coordination service in handler tests.
type MockService[T models.Resource] struct {
	mock.Mock
	Desc Descriptor
}

func (m *MockStore) ListRecords(ctx context.Context, resource string) ([]json.RawMessage, error) {
	args := m.Called(ctx, resource)
	records, _ := args.Get(0).([]json.RawMessage)
	return records, args.Error(1)
}

func (m *MockStore) GetRecord(ctx context.Context, resource, id string) (json.RawMessage, error) {
	args := m.Called(ctx, resource, id)
	record, _ := args.Get(0).(json.RawMessage)
	return record, args.Error(1)
}

func (m *MockStore) UpsertRecord(ctx context.Context, resource, id string, payload json.RawMessage) error {
	args := m.Called(ctx, resource, id, payload)
	return args.Error(0)
}

func (m *MockStore) GetPrivacyRules(ctx context.Context, resource string) ([]db.PrivacyRule, error) {
	args := m.Called(ctx, resource)
	rules, _ := args.Get(0).([]db.PrivacyRule)
	return rules, args.Error(1)
}

func (m *MockStore) GetExtendedData(ctx context.Context, resource string, ids []string) (map[string]map[string]json.RawMessage, error) {
	args := m.Called(ctx, resource, ids)
	data, _ := args.Get(0).(map[string]map[string]json.RawMessage)
	return data, args.Error(1)
}

// Get mock. A found entry is copied into dest through JSON.
func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key)
	if value := args.Get(0); value != nil {
		data, err := json.Marshal(value)
		if err != nil {
			return false, err
		}
		if err := json.Unmarshal(data, dest); err != nil {
			return false, err
		}
		return true, args.Error(1)
	}
	return false, args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) InvalidateResource(ctx context.Context, resource string) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *MockNotifier) Notify(ctx context.Context, event events.ChangeNotification) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) Close() {
	m.Called()
}

func (m *MockService[T]) Descriptor() Descriptor {
	return m.Desc
}

func (m *MockService[T]) GetAll(ctx context.Context, bypassCache bool) ([]T, error) {
	args := m.Called(ctx, bypassCache)
	items, _ := args.Get(0).([]T)
	return items, args.Error(1)
}

func (m *MockService[T]) Get(ctx context.Context, id string, bypassCache bool) (T, error) {
	args := m.Called(ctx, id, bypassCache)
	item, _ := args.Get(0).(T)
	return item, args.Error(1)
}

func (m *MockService[T]) Create(ctx context.Context, item T) (T, error) {
	args := m.Called(ctx, item)
	out, _ := args.Get(0).(T)
	return out, args.Error(1)
}

func (m *MockService[T]) Update(ctx context.Context, id string, item T) (T, error) {
	args := m.Called(ctx, id, item)
	out, _ := args.Get(0).(T)
	return out, args.Error(1)
}

func (m *MockService[T]) DataPrivacy(ctx context.Context, bypassCache bool) ([]string, error) {
	args := m.Called(ctx, bypassCache)
	props, _ := args.Get(0).([]string)
	return props, args.Error(1)
}

func (m *MockService[T]) ExtendedData(ctx context.Context, ids []string) (map[string]map[string]json.RawMessage, error) {
	args := m.Called(ctx, ids)
	data, _ := args.Get(0).(map[string]map[string]json.RawMessage)
	return data, args.Error(1)
}
