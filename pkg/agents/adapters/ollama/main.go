package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
	"github.com/xpanvictor/newscap/pkg/agents/adapters"
	"github.com/xpanvictor/newscap/pkg/agents/providers/ollama"
)

type ollamaAdapter struct {
	op ollama.Provider
}

func New(provider ollama.Provider) adapters.ChatAdapter {
	return &ollamaAdapter{op: provider}
}

func (o *ollamaAdapter) ConvertMsgs(msgs []adapters.ContractMessage) []api.Message {
	var convertedMsgs []api.Message
	for _, msg := range msgs {
		converted := api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		for _, tc := range msg.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      tc.ToolName,
					Arguments: api.ToolCallFunctionArguments(tc.Arguments),
				},
			})
		}
		convertedMsgs = append(convertedMsgs, converted)
	}
	return convertedMsgs
}

// convertTools re-encodes stubs into ollama's tool schema. Going
// through JSON sidesteps the anonymous structs in api.ToolFunction;
// ollama only keeps the flat property fields.
func convertTools(input adapters.ContractInput) (api.Tools, error) {
	if len(input.ToolList) == 0 {
		return nil, nil
	}
	wrapped := make([]map[string]json.RawMessage, 0, len(input.ToolList))
	for i := range input.ToolList {
		wrapped = append(wrapped, map[string]json.RawMessage{
			"type":     json.RawMessage(`"function"`),
			"function": input.ToolList[i].Canonical(),
		})
	}
	raw, err := json.Marshal(wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tools: %w", err)
	}
	var tools api.Tools
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, fmt.Errorf("failed to convert tools: %w", err)
	}
	return tools, nil
}

// Chat implements adapters.ChatAdapter.
func (o *ollamaAdapter) Chat(ctx context.Context, input adapters.ContractInput) (*adapters.ContractOutput, error) {
	tools, err := convertTools(input)
	if err != nil {
		return nil, err
	}

	stream := false
	req := api.ChatRequest{
		Model:    input.Model,
		Messages: o.ConvertMsgs(input.Msgs),
		Stream:   &stream,
		Tools:    tools,
	}

	out := &adapters.ContractOutput{CreatedAt: time.Now()}
	handler := func(cr api.ChatResponse) error {
		out.Content += cr.Message.Content
		for _, tc := range cr.Message.ToolCalls {
			// ollama does not assign call ids
			out.ToolCalls = append(out.ToolCalls, adapters.ContractToolCall{
				ID:        uuid.NewString(),
				ToolName:  tc.Function.Name,
				Arguments: map[string]any(tc.Function.Arguments),
			})
		}
		return nil
	}

	if err := o.op.Chat(ctx, req, handler); err != nil {
		return nil, err
	}
	return out, nil
}
