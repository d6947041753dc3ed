package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed events.sql
var eventsSQL string

// EventsFunctions lists the functions events.sql must create
var EventsFunctions = []string{
	"init_events",
	"upsert_event",
	"select_event",
	"select_event_hashes",
	"select_events_by_similarity",
	"count_events",
	"delete_event",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadEventsSql loads event-related SQL functions.
// If force is false and all functions already exist, nothing is executed.
func LoadEventsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, EventsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing events functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(eventsSQL)
	if err != nil {
		return fmt.Errorf("error executing events SQL: %w", err)
	}

	exist, err := checkFunctions(db, EventsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL events functions loaded successfully")
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
