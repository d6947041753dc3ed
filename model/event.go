package model

import "time"

// Event represents a single security event as ingested from the event export
type Event struct {
	EventID        string     `json:"event_id"`
	EventTypeID    string     `json:"event_type_id,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	Location       string     `json:"location,omitempty"`
	Severity       string     `json:"severity,omitempty"`
	Category       string     `json:"category,omitempty"`
	EventName      string     `json:"event_name,omitempty"`
	SystemCode     string     `json:"system_code,omitempty"`
	SourceDeviceID string     `json:"source_device_id,omitempty"`
	Description    string     `json:"description,omitempty"`
	OperatorNote   string     `json:"operator_note,omitempty"`
	// Indexing
	Document  string    `json:"document,omitempty"`
	Hash      string    `json:"hash,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Metadata returns the metadata record stored next to the event's vector
func (e *Event) Metadata() EventMetadata {
	timestamp := ""
	if e.Timestamp != nil {
		timestamp = e.Timestamp.Format(TimestampLayout)
	}

	return EventMetadata{
		EventID:        e.EventID,
		EventTypeID:    e.EventTypeID,
		EventName:      e.EventName,
		Category:       e.Category,
		SystemCode:     e.SystemCode,
		Location:       e.Location,
		Severity:       e.Severity,
		Timestamp:      timestamp,
		SourceDeviceID: e.SourceDeviceID,
		Hash:           e.Hash,
	}
}
