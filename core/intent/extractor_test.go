package intent

import (
	"testing"

	"github.com/siherrmann/eventrag/model"
	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	t.Run("Extracts all four filters", func(t *testing.T) {
		filters := Extract("Show me all critical fire alarms in Building B this week")

		assert.Equal(t, model.FilterSet{
			Severity: "critical",
			Category: "fire safety",
			Location: "building b",
			Days:     7,
		}, filters)
	})

	t.Run("No cues yields empty filter set", func(t *testing.T) {
		filters := Extract("What happened recently?")
		assert.False(t, filters.HasAny())
		assert.Equal(t, model.FilterSet{}, filters)
	})

	t.Run("Matching is case insensitive", func(t *testing.T) {
		filters := Extract("ANY UNAUTHORIZED ENTRIES IN THE SERVER ROOM?")
		assert.Equal(t, "security", filters.Category)
		assert.Equal(t, "server room", filters.Location)
	})
}

func TestExtractRulePrecedence(t *testing.T) {
	cases := []struct {
		name     string
		question string
		expected model.FilterSet
	}{
		{"Critical wins over high", "high and critical alarms", model.FilterSet{Severity: "critical"}},
		{"High wins over low", "low or high priority", model.FilterSet{Severity: "high"}},
		{"Medium severity", "medium events", model.FilterSet{Severity: "medium"}},
		{"Smoke maps to fire safety", "smoke detected", model.FilterSet{Category: "fire safety"}},
		{"Fire wins over camera", "camera saw fire", model.FilterSet{Category: "fire safety"}},
		{"Video category", "video loss", model.FilterSet{Category: "video"}},
		{"Badge maps to access control", "badge rejected", model.FilterSet{Category: "access control"}},
		{"Door maps to access control", "door forced", model.FilterSet{Category: "access control"}},
		{"Motion maps to security", "motion detected", model.FilterSet{Category: "security"}},
		{"Building A before parking", "parking near building a", model.FilterSet{Location: "building a"}},
		{"Lobby location", "lobby", model.FilterSet{Location: "lobby"}},
		{"Today is one day", "events today", model.FilterSet{Days: 1}},
		{"Yesterday is two days", "events yesterday", model.FilterSet{Days: 2}},
		{"Today wins over week", "this week, today", model.FilterSet{Days: 1}},
		{"Month is thirty days", "last month", model.FilterSet{Days: 30}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Extract(tc.question))
		})
	}
}

func TestExtractSubstringQuirks(t *testing.T) {
	t.Run("Substrings inside words match", func(t *testing.T) {
		// "highlight" contains "high", "weekend" contains "week"
		filters := Extract("highlight the weekend")
		assert.Equal(t, "high", filters.Severity)
		assert.Equal(t, 7, filters.Days)
	})
}

func TestExtractorCustomRules(t *testing.T) {
	t.Run("Uses provided rule table", func(t *testing.T) {
		extractor := NewExtractor(Rules{
			Location: []Rule{{Patterns: []string{"data center"}, Value: "data center"}},
		})

		filters := extractor.Extract("Critical issues in the Data Center")
		assert.Equal(t, model.FilterSet{Location: "data center"}, filters)
	})
}
