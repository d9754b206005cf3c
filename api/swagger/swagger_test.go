package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocTemplateIsValidJSON(t *testing.T) {
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte((&swaggerDoc{}).ReadDoc()), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	for _, path := range []string{"/timetables/generate", "/timetables/filter", "/timetables/export", "/constraints/detect", "/catalog/upload", "/courses/{code}"} {
		assert.Contains(t, doc.Paths, path)
	}
}
