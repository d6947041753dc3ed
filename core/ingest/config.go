package ingest

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/siherrmann/eventrag/core/pipeline"
)

// Config holds the ingestion settings
type Config struct {
	EventsCSV     string
	EventTypesCSV string
	ModelName     string
	EmbeddingDim  int
	BatchSize     int
}

// NewConfig returns the default ingestion configuration.
// CSV files are read from the data directory below APP_BASE_DIR,
// or below the working directory if it is unset.
func NewConfig() *Config {
	_ = godotenv.Load()

	baseDir := os.Getenv("APP_BASE_DIR")
	if baseDir == "" {
		baseDir = "."
	}

	return &Config{
		EventsCSV:     filepath.Join(baseDir, "data", "events.csv"),
		EventTypesCSV: filepath.Join(baseDir, "data", "event_types.csv"),
		ModelName:     pipeline.DefaultModelName,
		EmbeddingDim:  pipeline.DefaultEmbeddingDim,
		BatchSize:     50,
	}
}
