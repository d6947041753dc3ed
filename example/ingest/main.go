package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/siherrmann/eventrag"
	"github.com/siherrmann/eventrag/core/ingest"
	"github.com/siherrmann/eventrag/database"
	"github.com/siherrmann/eventrag/helper"
)

func main() {
	config := ingest.NewConfig()

	flag.StringVar(&config.EventsCSV, "events", config.EventsCSV, "path to the event export")
	flag.StringVar(&config.EventTypesCSV, "event-types", config.EventTypesCSV, "path to the event type table")
	flag.StringVar(&config.ModelName, "model", config.ModelName, "sentence transformer used for embeddings")
	flag.IntVar(&config.EmbeddingDim, "dim", config.EmbeddingDim, "embedding dimension of the model")
	flag.IntVar(&config.BatchSize, "batch-size", config.BatchSize, "events per batch")
	indexType := flag.String("index", "", "rebuild the vector index as hnsw or ivfflat after ingesting")
	flag.Parse()

	fmt.Printf("Events: %s\n", config.EventsCSV)
	fmt.Printf("Event types: %s\n", config.EventTypesCSV)

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("Failed to read database configuration: %v", err)
	}

	r, err := eventrag.NewEventRAG(dbConfig, config.EmbeddingDim)
	if err != nil {
		log.Fatalf("Failed to create eventrag: %v", err)
	}
	defer r.Close()

	if err := r.UseEmbedderModel(config.ModelName); err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}

	events, err := ingest.LoadEvents(config)
	if err != nil {
		log.Fatalf("Failed to load events: %v", err)
	}

	ctx := context.Background()
	stats, err := r.Ingest(ctx, events, config.BatchSize)
	if err != nil {
		log.Fatalf("Failed to ingest events: %v", err)
	}
	fmt.Printf("Finished ingestion. Added: %d, Updated: %d, Skipped: %d, Total in index: %d\n", stats.Added, stats.Updated, stats.Skipped, stats.Total)

	if *indexType != "" {
		if err := r.ChangeIndexType(ctx, *indexType, database.IndexParams{}); err != nil {
			log.Fatalf("Failed to change index type: %v", err)
		}
	}
}
