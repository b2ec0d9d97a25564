package chat

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverse struct {
	lastInput *bedrockruntime.ConverseInput
	reply     string
	err       error
}

func (f *fakeConverse) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role:    brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: f.reply}},
			},
		},
	}, nil
}

func TestAssistantReply(t *testing.T) {
	api := &fakeConverse{reply: "  We close at 8pm on Thursdays. "}
	a := NewAssistant(api, "model-1", nil)

	answer, err := a.Reply(context.Background(), []AssistantTurn{
		{Role: "user", Text: "What time do we close Thursday?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "We close at 8pm on Thursdays.", answer)

	require.NotNil(t, api.lastInput)
	assert.Equal(t, "model-1", aws.ToString(api.lastInput.ModelId))
	require.Len(t, api.lastInput.Messages, 1)
	assert.Equal(t, brtypes.ConversationRoleUser, api.lastInput.Messages[0].Role)
	require.Len(t, api.lastInput.System, 1)
}

func TestAssistantCarriesConversationRoles(t *testing.T) {
	api := &fakeConverse{reply: "ok"}
	a := NewAssistant(api, "model-1", nil)

	_, err := a.Reply(context.Background(), []AssistantTurn{
		{Role: "user", Text: "first question"},
		{Role: "assistant", Text: "first answer"},
		{Role: "user", Text: "follow-up"},
		{Role: "user", Text: "   "}, // blank turns are dropped
	})
	require.NoError(t, err)
	require.Len(t, api.lastInput.Messages, 3)
	assert.Equal(t, brtypes.ConversationRoleAssistant, api.lastInput.Messages[1].Role)
}

func TestAssistantRequiresModelAndMessages(t *testing.T) {
	a := NewAssistant(&fakeConverse{reply: "x"}, "", nil)
	_, err := a.Reply(context.Background(), []AssistantTurn{{Role: "user", Text: "hi"}})
	assert.Error(t, err)

	a = NewAssistant(&fakeConverse{reply: "x"}, "model-1", nil)
	_, err = a.Reply(context.Background(), nil)
	assert.Error(t, err)
}
