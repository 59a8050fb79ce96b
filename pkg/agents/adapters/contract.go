// Package adapters defines the chat contract the emulated agent
// service speaks to its model backends. One request carries the whole
// conversation; the result is either text or a batch of tool calls.
package adapters

import (
	"context"
	"time"

	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

type MsgRole string

const (
	USER      MsgRole = "user"
	ASSISTANT MsgRole = "assistant"
	SYSTEM    MsgRole = "system"
	TOOL      MsgRole = "tool"
)

type ContractMessage struct {
	Role      MsgRole
	Content   string
	CreatedAt time.Time
	// ToolCallID links a TOOL message back to the call it answers.
	ToolCallID string
	// ToolCalls echoes the calls an ASSISTANT message requested.
	ToolCalls []ContractToolCall
}

type ContractToolCall struct {
	ID        string
	ToolName  string
	Arguments map[string]any
}

type ContractInput struct {
	Model    string
	Msgs     []ContractMessage
	ToolList []toolbridge.FunctionStub
}

type ContractOutput struct {
	Content   string
	ToolCalls []ContractToolCall
	CreatedAt time.Time
}

// ChatAdapter is one model backend. Chat blocks until the model has
// answered the whole turn.
type ChatAdapter interface {
	Chat(ctx context.Context, input ContractInput) (*ContractOutput, error)
}
