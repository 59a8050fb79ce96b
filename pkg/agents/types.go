// Package agents defines the contract this app has with a hosted
// conversational-agent service: agent definitions carrying function
// tools, threads, and polled runs that pause for tool outputs.
package agents

import (
	"time"

	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunCancelling     RunStatus = "cancelling"
	RunCancelled      RunStatus = "cancelled"
	RunExpired        RunStatus = "expired"
)

// Terminal reports whether a poller should stop waiting on the run.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled, RunExpired:
		return true
	}
	return false
}

// ToolDefinition is one registered tool in the service's own shape.
// Function tools wrap synthesized stubs; the grounding tool carries a
// connection reference instead.
type ToolDefinition struct {
	Type          string                   `json:"type"`
	Function      *toolbridge.FunctionStub `json:"function,omitempty"`
	BingGrounding *BingGrounding           `json:"bing_grounding,omitempty"`
}

type BingGrounding struct {
	Connections []ToolConnection `json:"search_configurations"`
}

type ToolConnection struct {
	ConnectionID string `json:"connection_id"`
}

// FunctionTools wraps a stub set for registration.
func FunctionTools(stubs []toolbridge.FunctionStub) []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(stubs))
	for i := range stubs {
		defs = append(defs, ToolDefinition{Type: "function", Function: &stubs[i]})
	}
	return defs
}

// AgentSpec is what EnsureAgent pushes: the complete desired state of
// the agent, tools included. Registration always replaces the whole
// tool list.
type AgentSpec struct {
	ID           string
	Name         string
	Model        string
	Instructions string
	Description  string
	Tools        []ToolDefinition
}

type Agent struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Model        string           `json:"model"`
	Instructions string           `json:"instructions"`
	Description  string           `json:"description,omitempty"`
	Tools        []ToolDefinition `json:"tools"`
	CreatedAt    int64            `json:"created_at"`
}

type Thread struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

type ThreadMessage struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Text      string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// RequiredToolCall is one function call the run is blocked on.
type RequiredToolCall struct {
	CallID    string
	Name      string
	Arguments map[string]any
}

// ToolOutput answers one required call.
type ToolOutput struct {
	CallID string `json:"tool_call_id"`
	Output string `json:"output"`
}

type Run struct {
	ID                string
	ThreadID          string
	AgentID           string
	Status            RunStatus
	RequiredToolCalls []RequiredToolCall
	LastError         string
}
