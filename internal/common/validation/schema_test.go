package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "count": {"type": "integer", "minimum": 0}
  }
}`

func TestSchemaValidator_Validate(t *testing.T) {
	v, err := NewSchemaValidator(testSchema)
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       interface{}
		wantValid bool
	}{
		{"valid", map[string]interface{}{"name": "nova", "count": 2}, true},
		{"missing required", map[string]interface{}{"count": 2}, false},
		{"wrong type", map[string]interface{}{"name": 5}, false},
		{"negative", map[string]interface{}{"name": "x", "count": -1}, false},
		{"not an object", []interface{}{"a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.NotEmpty(t, result.Errors)
				assert.NotEmpty(t, result.Error())
			}
		})
	}
}

func TestSchemaValidator_ValidateBytes(t *testing.T) {
	v := MustSchemaValidator(testSchema)

	result, err := v.ValidateBytes([]byte(`{"name":"a"}`))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Error())

	_, err = v.ValidateBytes([]byte(`{"name":`))
	assert.Error(t, err)
}

func TestNewSchemaValidator_InvalidSchema(t *testing.T) {
	_, err := NewSchemaValidator(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateInput(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"reportType"},
	}

	result, err := ValidateInput(map[string]interface{}{"reportType": "work_order"}, schema)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = ValidateInput(map[string]interface{}{}, schema)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	result, err = ValidateInput(map[string]interface{}{}, nil)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}
