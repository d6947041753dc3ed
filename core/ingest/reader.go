package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/siherrmann/eventrag/helper"
	"github.com/siherrmann/eventrag/model"
)

// EventType is one row of the event type table
type EventType struct {
	EventTypeID string
	Name        string
	Category    string
	SystemCode  string
}

// record is a CSV row keyed by its header
type record map[string]string

func readRecords(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("read header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, helper.NewError("read row", err)
		}

		rec := make(record, len(header))
		for i, column := range header {
			if i < len(row) {
				rec[column] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// ReadEventTypes reads the event type table, keyed by EventTypeID
func ReadEventTypes(r io.Reader) (map[string]EventType, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	types := make(map[string]EventType, len(records))
	for _, rec := range records {
		id := rec["EventTypeID"]
		if id == "" {
			continue
		}
		types[id] = EventType{
			EventTypeID: id,
			Name:        CleanText(rec["Name"]),
			Category:    CleanText(rec["Category"]),
			SystemCode:  CleanText(rec["SystemCode"]),
		}
	}

	return types, nil
}

// ReadEvents reads the event export and joins every row with its event type.
// Rows without EventID are skipped, unknown event types leave the type fields
// empty. A Category column on the event row takes precedence over the type's.
func ReadEvents(r io.Reader, types map[string]EventType) ([]*model.Event, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	events := make([]*model.Event, 0, len(records))
	for _, rec := range records {
		if rec["EventID"] == "" {
			continue
		}

		event := &model.Event{
			EventID:        rec["EventID"],
			EventTypeID:    rec["EventTypeID"],
			Location:       CleanText(rec["Location"]),
			Severity:       CleanText(rec["Severity"]),
			Category:       CleanText(rec["Category"]),
			SourceDeviceID: rec["SourceDeviceID"],
			Description:    CleanText(rec["Description"]),
			OperatorNote:   CleanText(rec["OperatorNote"]),
		}
		if ts, ok := ParseTimestamp(rec["Timestamp"]); ok {
			event.Timestamp = &ts
		}

		if eventType, ok := types[event.EventTypeID]; ok {
			event.EventName = eventType.Name
			event.SystemCode = eventType.SystemCode
			if event.Category == "" {
				event.Category = eventType.Category
			}
		}

		events = append(events, event)
	}

	return events, nil
}

// LoadEvents reads both CSV files of the configuration
func LoadEvents(config *Config) ([]*model.Event, error) {
	typesFile, err := os.Open(config.EventTypesCSV)
	if err != nil {
		return nil, helper.NewError("open event types", err)
	}
	defer typesFile.Close()

	types, err := ReadEventTypes(typesFile)
	if err != nil {
		return nil, helper.NewError("read event types", err)
	}

	eventsFile, err := os.Open(config.EventsCSV)
	if err != nil {
		return nil, helper.NewError("open events", err)
	}
	defer eventsFile.Close()

	events, err := ReadEvents(eventsFile, types)
	if err != nil {
		return nil, helper.NewError("read events", err)
	}
	if len(events) == 0 {
		return nil, helper.NewError("read events", fmt.Errorf("no events in %s", config.EventsCSV))
	}

	return events, nil
}
