package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/salonsuite/platform/internal/observability/metrics"
)

const assistantSystemPrompt = "You are the in-app assistant for a salon team chat. " +
	"Answer questions about scheduling, services, and salon operations concisely. " +
	"If a question needs data you don't have, say so instead of guessing."

// AssistantTurn is one prior exchange passed as conversation context.
type AssistantTurn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Assistant answers panel questions through a hosted model. The model is a
// black box: one request, one response, no tool use.
type Assistant struct {
	api     converseAPI
	modelID string
	metrics *metrics.ChatMetrics
}

// NewAssistant wraps a bedrock runtime client. metrics may be nil.
func NewAssistant(api converseAPI, modelID string, m *metrics.ChatMetrics) *Assistant {
	if api == nil {
		panic("chat: bedrock converse client cannot be nil")
	}
	return &Assistant{api: api, modelID: modelID, metrics: m}
}

// Reply sends the conversation and returns the assistant's answer.
func (a *Assistant) Reply(ctx context.Context, turns []AssistantTurn) (string, error) {
	if strings.TrimSpace(a.modelID) == "" {
		return "", errors.New("chat: assistant model id is required")
	}

	messages := make([]brtypes.Message, 0, len(turns))
	for _, turn := range turns {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		role := brtypes.ConversationRoleUser
		if turn.Role == "assistant" {
			role = brtypes.ConversationRoleAssistant
		}
		messages = append(messages, brtypes.Message{
			Role:    role,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
		})
	}
	if len(messages) == 0 {
		return "", errors.New("chat: assistant needs at least one message")
	}

	started := time.Now()
	out, err := a.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:  aws.String(a.modelID),
		System:   []brtypes.SystemContentBlock{&brtypes.SystemContentBlockMemberText{Value: assistantSystemPrompt}},
		Messages: messages,
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens: aws.Int32(1024),
		},
	})
	if err != nil {
		return "", err
	}
	a.metrics.ObserveAssistantLatency(time.Since(started).Seconds())

	return extractText(out)
}

func extractText(out *bedrockruntime.ConverseOutput) (string, error) {
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return "", errors.New("chat: assistant returned no message")
	}
	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", errors.New("chat: assistant returned empty text")
	}
	return answer, nil
}
