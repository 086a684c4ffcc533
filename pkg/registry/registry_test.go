package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "2025.1",
		"templates": [
			{"reportType": "work_order", "file": "OT.docx", "version": "1.0"},
			{"reportType": "final_inspection", "file": "OLD.docx"},
			{"reportType": "final_inspection", "file": "FINAL.docx", "version": "3.2"},
			{"reportType": "", "file": "ignored.docx"}
		]
	}`), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2025.1", reg.Version)
	assert.Equal(t, map[string]string{
		"work_order":       "OT.docx",
		"final_inspection": "FINAL.docx",
	}, reg.Files())

	entry, ok := reg.Lookup("final_inspection")
	require.True(t, ok)
	assert.Equal(t, "3.2", entry.Version)

	_, ok = reg.Lookup("field_inspection")
	assert.False(t, ok)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"templates": [`), 0o644))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}

func TestShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "templates", "registry.json"))
	require.NoError(t, err)

	files := reg.Files()
	assert.Equal(t, "ORDEN_TRABAJO_PLANTILLA.docx", files["work_order"])
	assert.Equal(t, "INFORME_CAMPO_PLANTILLA.docx", files["field_inspection"])
	assert.Equal(t, "INFORME_INSPECCION_PLANTILLA.docx", files["final_inspection"])
}
