package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain text is lowercased", "Fire Alarm", "fire alarm"},
		{"Punctuation becomes space", "Fire-Safety", "fire safety"},
		{"Markup is stripped", "<b>Door</b> forced <i>open</i>", "door forced open"},
		{"Entities are decoded", "Smoke &amp; heat", "smoke heat"},
		{"Whitespace collapses", "  Building   B \t East\nWing  ", "building b east wing"},
		{"Compatibility characters are normalised", "ＬＯＢＢＹ №1", "lobby no1"},
		{"Latin accents are kept", "Zugangskontrolle Südflügel", "zugangskontrolle südflügel"},
		{"Other scripts are dropped", "Camera 摄像头 offline", "camera offline"},
		{"Empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Run("Day-first layouts win", func(t *testing.T) {
		ts, ok := ParseTimestamp("03/04/2025 08:15")
		assert.True(t, ok)
		assert.Equal(t, time.Date(2025, 4, 3, 8, 15, 0, 0, time.Local), ts)
	})

	t.Run("ISO layout", func(t *testing.T) {
		ts, ok := ParseTimestamp("2025-04-03 08:15:30")
		assert.True(t, ok)
		assert.Equal(t, time.Date(2025, 4, 3, 8, 15, 30, 0, time.Local), ts)
	})

	t.Run("Date only", func(t *testing.T) {
		ts, ok := ParseTimestamp("03.04.2025")
		assert.True(t, ok)
		assert.Equal(t, time.Date(2025, 4, 3, 0, 0, 0, 0, time.Local), ts)
	})

	t.Run("Invalid timestamps are rejected", func(t *testing.T) {
		for _, value := range []string{"", "not-a-date", "31/31/2025"} {
			_, ok := ParseTimestamp(value)
			assert.False(t, ok, value)
		}
	})
}

func TestHashText(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashText(""))
	assert.Equal(t, HashText("event"), HashText("event"))
	assert.NotEqual(t, HashText("event a"), HashText("event b"))
	assert.Len(t, HashText("event"), 64)
}
