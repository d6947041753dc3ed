package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadRules(t *testing.T) {
	t.Run("Loads and normalizes rules", func(t *testing.T) {
		path := writeRules(t, `
severity:
  - patterns: ["URGENT", "critical"]
    value: critical
location:
  - patterns: [" Warehouse "]
    value: warehouse
recency:
  - patterns: [hour]
    days: 1
`)
		rules, err := LoadRules(path)
		require.NoError(t, err)
		require.Len(t, rules.Severity, 1)
		assert.Equal(t, []string{"urgent", "critical"}, rules.Severity[0].Patterns)
		assert.Equal(t, []string{"warehouse"}, rules.Location[0].Patterns)

		filters := NewExtractor(rules).Extract("Urgent issue in the warehouse this hour")
		assert.Equal(t, "critical", filters.Severity)
		assert.Equal(t, "warehouse", filters.Location)
		assert.Equal(t, 1, filters.Days)
	})

	t.Run("Missing file returns error", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid rules are rejected", func(t *testing.T) {
		invalid := map[string]string{
			"missing value":  "category:\n  - patterns: [fire]\n",
			"no patterns":    "category:\n  - value: fire safety\n",
			"empty pattern":  "location:\n  - patterns: [\" \"]\n    value: lobby\n",
			"zero days":      "recency:\n  - patterns: [today]\n    days: 0\n",
			"malformed yaml": "severity: [",
		}
		for name, content := range invalid {
			t.Run(name, func(t *testing.T) {
				_, err := LoadRules(writeRules(t, content))
				assert.Error(t, err)
			})
		}
	})

	t.Run("Default rules pass validation", func(t *testing.T) {
		rules := DefaultRules()
		assert.NoError(t, rules.normalize())
	})
}
