package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CoversEveryDispatchedTool(t *testing.T) {
	tools := Catalog()

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		assert.NotEmpty(t, tool.Description, "tool %s has no description", tool.Name)
		assert.Equal(t, "object", tool.Parameters["type"])
		names[tool.Name] = true
	}
	assert.Len(t, names, len(tools), "duplicate tool names")

	expected := []string{
		"get_all_use_cases",
		"get_use_case_by_id",
		"create_use_case",
		"update_use_case",
		"update_use_case_status",
		"delete_use_case",
		"filter_use_cases",
		"get_all_industries",
		"get_all_companies",
		"get_all_persons",
		"get_persons_by_use_case",
		"create_industry",
		"create_company",
		"create_person",
		"add_persons_to_use_case",
	}
	require.Len(t, tools, len(expected))
	for _, name := range expected {
		assert.True(t, names[name], "missing tool %s", name)
	}
}

func TestCatalog_StatusEnumMatchesModel(t *testing.T) {
	for _, tool := range Catalog() {
		if tool.Name != "update_use_case_status" {
			continue
		}
		props := tool.Parameters["properties"].(map[string]any)
		status := props["status"].(map[string]any)
		assert.ElementsMatch(t,
			[]string{"new", "in_review", "approved", "in_progress", "completed", "archived"},
			status["enum"])
		return
	}
	t.Fatal("update_use_case_status not in catalog")
}
