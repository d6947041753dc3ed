package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/siherrmann/eventrag"
	"github.com/siherrmann/eventrag/core/ingest"
	"github.com/siherrmann/eventrag/helper"
	"github.com/siherrmann/eventrag/model"
)

const sampleEventTypes = `EventTypeID,Name,Category,SystemCode
1,Smoke Detected,Fire Safety,FS-01
2,Badge Rejected,Access Control,AC-02
3,Camera Offline,Video,VS-03`

func sampleEvents() string {
	now := time.Now()
	day := func(days int) string {
		return now.AddDate(0, 0, -days).Format("02/01/2006 15:04")
	}

	return "EventID,EventTypeID,Timestamp,Location,Severity,SourceDeviceID,Description,OperatorNote\n" +
		"1001,1," + day(1) + ",Building B - East Wing,Critical,SD-12,Smoke detected in corridor 2,Fire brigade notified\n" +
		"1002,2," + day(2) + ",Lobby,Low,BR-03,Badge rejected three times,Visitor badge expired\n" +
		"1003,3," + day(3) + ",Parking,Medium,CAM-7,Camera lost connection,\n" +
		"1004,1," + day(40) + ",Building B,Critical,SD-04,Smoke alarm in server room,False alarm\n"
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	r, err := eventrag.NewEventRAG(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create eventrag: %v", err)
	}
	defer r.Close()

	if err := r.UseDefaultEmbedder(); err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}

	// Without an API key the retrieved prompt is printed instead of an answer
	llmConfig, err := helper.NewLLMConfiguration()
	if err == nil {
		err = r.UseOpenAIAnswerer(llmConfig)
	}
	if err != nil {
		fmt.Println("No LLM configured, printing prompts instead")
		r.SetAnswerer(func(ctx context.Context, system string, prompt string) (string, error) {
			return prompt, nil
		})
	}

	types, err := ingest.ReadEventTypes(strings.NewReader(sampleEventTypes))
	if err != nil {
		log.Fatalf("Failed to read event types: %v", err)
	}
	events, err := ingest.ReadEvents(strings.NewReader(sampleEvents()), types)
	if err != nil {
		log.Fatalf("Failed to read events: %v", err)
	}

	fmt.Println("Ingesting events...")
	stats, err := r.Ingest(context.Background(), events, 50)
	if err != nil {
		log.Fatalf("Failed to ingest events: %v", err)
	}
	fmt.Printf("Added: %d, Updated: %d, Skipped: %d, Total: %d\n", stats.Added, stats.Updated, stats.Skipped, stats.Total)

	var history []model.Turn
	for _, question := range []string{
		"Show me all critical fire alarms in Building B this week",
		"Any camera issues?",
	} {
		fmt.Printf("\nQuestion: %s\n", question)

		reply := r.Respond(context.Background(), question, history)
		fmt.Println(reply)

		history = append(history, model.Turn{User: question, Assistant: reply})
	}

	fmt.Println("\nBasic example completed successfully!")
}
