package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/siherrmann/eventrag/model"
)

// SystemInstruction is the fixed system message sent with every prompt
const SystemInstruction = "You are a helpful and friendly assistant. Reply concisely and politely in English. " +
	"If the user's input is unclear, random, or not about events, respond in a friendly conversational way " +
	"WITHOUT referencing events or sources. Only show events when they are relevant to the user's question. " +
	"When asked about events, reference events by their numbers and include short summaries."

// DateLayout renders today's date in the prompt header
const DateLayout = "02 January 2006"

const notAvailable = "N/A"

// BuildContext renders the user prompt: today's date, the ranked events as
// numbered blocks in rank order, the last historyTurns conversation turns and
// the question.
func BuildContext(ranked model.Candidates, history []model.Turn, question string, today time.Time, historyTurns int) string {
	var events strings.Builder
	for i, c := range ranked {
		m := c.Metadata
		fmt.Fprintf(&events, "[Event %d]\n", i+1)
		fmt.Fprintf(&events, "- %s\n", orNA(m.Timestamp))
		fmt.Fprintf(&events, "- %s\n", orNA(m.Location))
		fmt.Fprintf(&events, "- %s | %s\n", orNA(m.Severity), orNA(m.Category))
		fmt.Fprintf(&events, "- %s\n\n", orNA(m.EventName))
	}

	var conversation strings.Builder
	for _, turn := range lastTurns(history, historyTurns) {
		fmt.Fprintf(&conversation, "User: %s\nAssistant: %s\n\n", turn.User, turn.Assistant)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today's date: %s\n", today.Format(DateLayout))
	b.WriteString("Use ONLY the following event data:\n\n")
	b.WriteString(events.String())
	b.WriteString("\n\nConversation history:\n")
	b.WriteString(conversation.String())
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer clearly and reference event numbers.")

	return b.String()
}

// FormatSources renders the metadata of the cited events as a markdown table.
// No sources render as an empty string.
func FormatSources(sources []model.EventMetadata) string {
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("### Sources\n\n")
	b.WriteString("| # | EventID | Location | Severity | Category | Timestamp |\n")
	b.WriteString("|---|---------|----------|----------|----------|----------|\n")
	for i, s := range sources {
		fmt.Fprintf(
			&b,
			"| %d | %s | %s | %s | %s | %s |\n",
			i+1, orNA(s.EventID), orNA(s.Location), orNA(s.Severity), orNA(s.Category), orNA(s.Timestamp),
		)
	}

	return b.String()
}

func lastTurns(history []model.Turn, n int) []model.Turn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

func orNA(value string) string {
	if value == "" {
		return notAvailable
	}
	return value
}
