package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/siherrmann/eventrag/helper"
)

// ErrAnswerUnavailable is returned when the language model does not produce an answer
var ErrAnswerUnavailable = errors.New("answer unavailable")

const (
	// Temperature is the sampling temperature of every completion
	Temperature = 0.0
	// MaxTokens is the completion token limit
	MaxTokens = 1000
)

// AnswerFunc generates an answer for a system instruction and a user prompt
type AnswerFunc func(ctx context.Context, system string, prompt string) (string, error)

// NewOpenAIAnswerer returns an AnswerFunc backed by an OpenAI compatible
// chat completions endpoint. Requests are sent once, without retries.
func NewOpenAIAnswerer(config *helper.LLMConfiguration) (AnswerFunc, error) {
	if config == nil {
		return nil, helper.NewError("llm configuration validation", fmt.Errorf("configuration is nil"))
	}
	if config.APIKey == "" {
		return nil, helper.NewError("llm configuration validation", fmt.Errorf("api key is empty"))
	}

	client := openai.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(config.BaseURL),
		option.WithMaxRetries(0),
	)

	return func(ctx context.Context, system string, prompt string) (string, error) {
		resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(config.Model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(Temperature),
			MaxTokens:   openai.Int(MaxTokens),
		})
		if err != nil {
			return "", helper.NewError("chat completion", fmt.Errorf("%w: %w", ErrAnswerUnavailable, err))
		}
		if len(resp.Choices) == 0 {
			return "", helper.NewError("chat completion", fmt.Errorf("%w: response has no choices", ErrAnswerUnavailable))
		}

		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}, nil
}
