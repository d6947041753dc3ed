package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/siherrmann/eventrag"
	"github.com/siherrmann/eventrag/core/pipeline"
	"github.com/siherrmann/eventrag/helper"
	"github.com/siherrmann/eventrag/model"
)

func main() {
	vectorOnly := flag.Bool("vector-only", false, "rank by similarity only, without filters")
	topK := flag.Int("top-k", 10, "number of events passed to the model")
	rulesPath := flag.String("rules", os.Getenv("EVENTRAG_INTENT_RULES"), "YAML file with intent rules replacing the built-in ones")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	flag.Parse()

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("Failed to read database configuration: %v", err)
	}
	llmConfig, err := helper.NewLLMConfiguration()
	if err != nil {
		log.Fatalf("Failed to read LLM configuration: %v", err)
	}

	r, err := eventrag.NewEventRAG(dbConfig, pipeline.DefaultEmbeddingDim)
	if err != nil {
		log.Fatalf("Failed to create eventrag: %v", err)
	}
	defer r.Close()

	if err := r.UseDefaultEmbedder(); err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}
	if err := r.UseOpenAIAnswerer(llmConfig); err != nil {
		log.Fatalf("Failed to set up answerer: %v", err)
	}
	if *rulesPath != "" {
		if err := r.LoadRules(*rulesPath); err != nil {
			log.Fatalf("Failed to load intent rules: %v", err)
		}
	}
	r.VectorOnly = *vectorOnly
	r.Config.TopK = *topK

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
		defer server.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Security Events Chat")
	fmt.Println(`Ask about security events, e.g. "Any fire alarms today?". Type "exit" to quit.`)

	var history []model.Turn
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		message := scanner.Text()
		if strings.TrimSpace(message) == "exit" {
			break
		}

		reply := r.Respond(ctx, message, history)
		fmt.Println()
		fmt.Println(reply)

		if strings.TrimSpace(message) != "" {
			history = append(history, model.Turn{User: message, Assistant: reply})
		}
		if ctx.Err() != nil {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Failed to read input: %v", err)
	}
}
