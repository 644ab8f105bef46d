package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptors_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Descriptors() {
		assert.False(t, seen[d.Name], "duplicate resource %s", d.Name)
		seen[d.Name] = true
		assert.NotEmpty(t, d.Versions, d.Name)
	}
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("meal-plan-requests")
	assert.True(t, ok)
	assert.True(t, d.Writable)

	_, ok = Lookup("course-catalogs")
	assert.False(t, ok)
}

func TestDescriptor_Versions(t *testing.T) {
	d := Descriptor{Versions: []int{6, 7}}
	assert.Equal(t, 7, d.LatestVersion())
	assert.True(t, d.SupportsVersion(6))
	assert.False(t, d.SupportsVersion(8))
	assert.Equal(t, 1, Descriptor{}.LatestVersion())
}

func TestCatalog_WarmersAreCachedResources(t *testing.T) {
	catalog := NewCatalog(new(MockStore), nil, nil)

	for _, w := range catalog.Warmers() {
		assert.True(t, w.Descriptor().Cached, w.Descriptor().Name)
	}
	assert.Len(t, catalog.Warmers(), 13)
}
