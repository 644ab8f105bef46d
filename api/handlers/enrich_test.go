package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovePath(t *testing.T) {
	doc := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "1",
		"person": {"id": "p1", "name": "Jo"},
		"scores": [{"value": 1, "source": "a"}, {"value": 2}],
		"status": "submitted"
	}`), &doc))

	assert.True(t, removePath(doc, "status"))
	assert.True(t, removePath(doc, "person.name"))
	assert.True(t, removePath(doc, "scores.source"))
	assert.False(t, removePath(doc, "scores.source"))
	assert.False(t, removePath(doc, "person.id.value"))
	assert.False(t, removePath(doc, "missing.path"))

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","person":{"id":"p1"},"scores":[{"value":1},{"value":2}]}`, string(out))
}

func TestToDocumentsKeepsNumbers(t *testing.T) {
	docs, err := toDocuments([]map[string]any{{"big": int64(9007199254740993)}})
	require.NoError(t, err)

	out, err := json.Marshal(docs[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"big":9007199254740993}`, string(out))
}
