package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/xpanvictor/newscap/pkg/agents/adapters"
	"github.com/xpanvictor/newscap/pkg/agents/providers/gemini"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

type geminiAdapter struct {
	gp *gemini.Provider
}

// New creates a new GeminiAdapter instance.
func New(provider *gemini.Provider) adapters.ChatAdapter {
	return &geminiAdapter{gp: provider}
}

// Chat implements adapters.ChatAdapter.
func (g *geminiAdapter) Chat(ctx context.Context, input adapters.ContractInput) (*adapters.ContractOutput, error) {
	model := g.gp.GetModel(input.Model)
	model.Tools = g.ConvertTools(input.ToolList)

	resp, err := g.gp.Generate(ctx, model, g.ConvertMsgs(input.Msgs)...)
	if err != nil {
		return nil, fmt.Errorf("gemini chat failed: %w", err)
	}
	return g.ConvertMsgBackward(resp), nil
}

// ConvertMsgs flattens the conversation into parts. Gemini handles
// history differently; roles ride along as text prefixes.
func (g *geminiAdapter) ConvertMsgs(msgs []adapters.ContractMessage) []genai.Part {
	var parts []genai.Part
	for _, msg := range msgs {
		switch msg.Role {
		case adapters.TOOL:
			parts = append(parts, genai.Text(fmt.Sprintf("tool result %s: %s", msg.ToolCallID, msg.Content)))
		default:
			parts = append(parts, genai.Text(fmt.Sprintf("%s: %s", msg.Role, msg.Content)))
		}
	}
	return parts
}

// ConvertMsgBackward collects text and function calls from the
// response candidates.
func (g *geminiAdapter) ConvertMsgBackward(resp *genai.GenerateContentResponse) *adapters.ContractOutput {
	out := &adapters.ContractOutput{CreatedAt: time.Now()}
	if resp == nil {
		return out
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				out.Content += string(txt)
			}
			if fc, ok := part.(genai.FunctionCall); ok {
				out.ToolCalls = append(out.ToolCalls, adapters.ContractToolCall{
					ID:        uuid.NewString(),
					ToolName:  fc.Name,
					Arguments: fc.Args,
				})
			}
		}
	}
	return out
}

// ConvertTools converts synthesized stubs to Gemini's tool format.
func (g *geminiAdapter) ConvertTools(stubs []toolbridge.FunctionStub) []*genai.Tool {
	if len(stubs) == 0 {
		return nil
	}

	geminiTools := make([]*genai.Tool, len(stubs))
	for i, stub := range stubs {
		properties := make(map[string]*genai.Schema)
		for propName, propDef := range stub.Parameters.Properties {
			properties[propName] = convertProperty(propDef)
		}

		geminiTools[i] = &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        stub.Name,
					Description: stub.Description,
					Parameters: &genai.Schema{
						Type:       genai.TypeObject,
						Properties: properties,
						Required:   stub.Parameters.Required,
					},
				},
			},
		}
	}
	return geminiTools
}

func convertProperty(prop toolbridge.StubProperty) *genai.Schema {
	schema := &genai.Schema{
		Description: prop.Description,
		Enum:        prop.Enum,
	}
	switch prop.Type {
	case "string":
		schema.Type = genai.TypeString
	case "integer":
		schema.Type = genai.TypeInteger
	case "number":
		schema.Type = genai.TypeNumber
	case "boolean":
		schema.Type = genai.TypeBoolean
	case "array":
		schema.Type = genai.TypeArray
		if prop.Items != nil {
			schema.Items = convertProperty(*prop.Items)
		}
	case "object":
		schema.Type = genai.TypeObject
		if len(prop.Properties) > 0 {
			schema.Properties = make(map[string]*genai.Schema)
			for name, child := range prop.Properties {
				schema.Properties[name] = convertProperty(child)
			}
			schema.Required = prop.Required
		}
	default:
		schema.Type = genai.TypeString // default to string
	}
	return schema
}
