package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/siherrmann/eventrag/helper"
)

// TimestampLayout is the fixed format event timestamps are stored in
const TimestampLayout = "2006-01-02 15:04:05"

// Metadata field names as stored in the JSONB metadata column
const (
	FieldEventID   = "EventID"
	FieldTimestamp = "Timestamp"
	FieldLocation  = "Location"
	FieldSeverity  = "Severity"
	FieldCategory  = "Category"
	FieldEventName = "EventName"
)

// EventMetadata is the metadata record stored alongside each event vector
type EventMetadata struct {
	EventID        string `json:"EventID"`
	EventTypeID    string `json:"EventTypeID,omitempty"`
	EventName      string `json:"EventName"`
	Category       string `json:"Category"`
	SystemCode     string `json:"SystemCode,omitempty"`
	Location       string `json:"Location"`
	Severity       string `json:"Severity"`
	Timestamp      string `json:"Timestamp"`
	SourceDeviceID string `json:"SourceDeviceID,omitempty"`
	Hash           string `json:"hash,omitempty"`
}

// Value implements the driver.Valuer interface for database storage
func (m EventMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *EventMetadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = EventMetadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return helper.NewError("metadata assertion", errors.New("type assertion to []byte failed"))
	}
}

// Field returns the value of a named metadata field, empty if unknown
func (m EventMetadata) Field(name string) string {
	switch name {
	case FieldEventID:
		return m.EventID
	case FieldTimestamp:
		return m.Timestamp
	case FieldLocation:
		return m.Location
	case FieldSeverity:
		return m.Severity
	case FieldCategory:
		return m.Category
	case FieldEventName:
		return m.EventName
	default:
		return ""
	}
}

// ParsedTimestamp parses the stored timestamp in the local time zone.
// The second return value is false if the timestamp is missing or malformed.
func (m EventMetadata) ParsedTimestamp() (time.Time, bool) {
	if m.Timestamp == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(TimestampLayout, m.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
