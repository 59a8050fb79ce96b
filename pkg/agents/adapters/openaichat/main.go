package openaichat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/pkg/agents/adapters"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

type openAIAdapter struct {
	client openai.Client
}

func New(cfg config.LLMConfig) adapters.ChatAdapter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return &openAIAdapter{client: openai.NewClient(opts...)}
}

// Chat implements adapters.ChatAdapter.
func (o *openAIAdapter) Chat(ctx context.Context, input adapters.ContractInput) (*adapters.ContractOutput, error) {
	convertedMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(input.Msgs))
	for _, msg := range input.Msgs {
		convertedMsgs = append(convertedMsgs, convertToOpenaiMsg(msg))
	}

	chatCompletion, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: convertedMsgs,
			Model:    openai.ChatModel(input.Model),
			Tools:    convertTools(input.ToolList),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	choice := chatCompletion.Choices[0]
	out := &adapters.ContractOutput{
		Content:   choice.Message.Content,
		CreatedAt: time.Now(),
	}
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				args = map[string]any{"kwargs": tc.Function.Arguments}
			}
		}
		out.ToolCalls = append(out.ToolCalls, adapters.ContractToolCall{
			ID:        tc.ID,
			ToolName:  tc.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

func convertToOpenaiMsg(msg adapters.ContractMessage) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case adapters.ASSISTANT:
		if len(msg.ToolCalls) == 0 {
			return openai.AssistantMessage(msg.Content)
		}
		asst := openai.ChatCompletionAssistantMessageParam{}
		if msg.Content != "" {
			asst.Content.OfString = openai.String(msg.Content)
		}
		for _, tc := range msg.ToolCalls {
			raw, err := json.Marshal(tc.Arguments)
			if err != nil {
				raw = []byte("{}")
			}
			asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      tc.ToolName,
						Arguments: string(raw),
					},
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
	case adapters.SYSTEM:
		return openai.SystemMessage(msg.Content)
	case adapters.TOOL:
		return openai.ToolMessage(msg.Content, msg.ToolCallID)
	}
	return openai.UserMessage(msg.Content)
}

func convertTools(stubs []toolbridge.FunctionStub) []openai.ChatCompletionToolUnionParam {
	if len(stubs) == 0 {
		return nil
	}
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(stubs))
	for _, stub := range stubs {
		var params openai.FunctionParameters
		raw, err := json.Marshal(stub.Parameters)
		if err == nil {
			json.Unmarshal(raw, &params)
		}
		tools = append(tools, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        stub.Name,
			Description: openai.String(stub.Description),
			Parameters:  params,
		}))
	}
	return tools
}
