package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToolDefinition(t *testing.T) {
	def := NewToolDefinition("update_status", "Change a status",
		map[string]ParameterProperty{
			"id":     {Type: "integer", Description: "The row id"},
			"status": {Type: "string", Enum: []string{"new", "archived"}},
			"ids":    {Type: "array", Items: &ParameterProperty{Type: "integer"}},
		},
		[]string{"id", "status"},
	)

	assert.Equal(t, "update_status", def.Name)
	assert.Equal(t, "object", def.Parameters["type"])
	assert.Equal(t, []string{"id", "status"}, def.Parameters["required"])

	props, ok := def.Parameters["properties"].(map[string]any)
	require.True(t, ok)

	id := props["id"].(map[string]any)
	assert.Equal(t, "integer", id["type"])
	assert.Equal(t, "The row id", id["description"])

	status := props["status"].(map[string]any)
	assert.Equal(t, []string{"new", "archived"}, status["enum"])

	ids := props["ids"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "integer"}, ids["items"])
}

func TestNewToolDefinition_NoRequiredBecomesEmptyList(t *testing.T) {
	def := NewToolDefinition("list_all", "List everything", map[string]ParameterProperty{}, nil)

	// Some providers reject a missing required field; it must always be
	// present, even when empty.
	required, ok := def.Parameters["required"].([]string)
	require.True(t, ok)
	assert.Empty(t, required)
}
