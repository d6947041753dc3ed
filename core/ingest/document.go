package ingest

import (
	"strings"

	"github.com/siherrmann/eventrag/model"
)

// BuildDocument renders the text that is embedded for an event.
// Empty fields are left out.
func BuildDocument(event *model.Event) string {
	var parts []string

	if event.Timestamp != nil {
		parts = append(parts, "Timestamp: "+event.Timestamp.Format(model.TimestampLayout))
	}
	if event.Location != "" {
		parts = append(parts, "Location: "+event.Location)
	}

	var title []string
	for _, p := range []string{event.EventName, event.Category} {
		if p != "" {
			title = append(title, p)
		}
	}
	if len(title) > 0 {
		parts = append(parts, strings.Join(title, " - "))
	}

	if event.Severity != "" {
		parts = append(parts, "Severity: "+event.Severity)
	}
	if event.Description != "" {
		parts = append(parts, "Description:", event.Description)
	}
	if event.OperatorNote != "" {
		parts = append(parts, "Operator Note:", event.OperatorNote)
	}

	return strings.Join(parts, "\n")
}

// Prepare builds the document and its hash for every event
func Prepare(events []*model.Event) {
	for _, event := range events {
		event.Document = BuildDocument(event)
		event.Hash = HashText(event.Document)
	}
}
