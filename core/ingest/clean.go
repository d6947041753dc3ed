package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// CleanText normalises free text for indexing. Markup is stripped, entities
// are decoded and the text is NFKC normalised and lowercased. Anything but
// ASCII letters and digits, Latin-1/Latin Extended-A letters and whitespace
// becomes a space, and runs of whitespace collapse to one space.
func CleanText(text string) string {
	text = stripMarkup(text)
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)

	text = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 0xC0 && r <= 0x17F:
			return r
		case unicode.IsSpace(r):
			return r
		}
		return ' '
	}, text)

	return strings.Join(strings.Fields(text), " ")
}

// stripMarkup drops HTML tags and returns the decoded text content
func stripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(text))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return b.String()
			}
			return html.UnescapeString(text)
		case html.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}

var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// ParseTimestamp parses an export timestamp in the local time zone.
// Day-first layouts are tried before ISO layouts, the second return value
// is false if no layout matches.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HashText returns the hex encoded SHA-256 digest of text
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
