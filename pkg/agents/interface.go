package agents

import (
	"context"
	"errors"
)

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrThreadNotFound = errors.New("thread not found")
	ErrRunNotFound    = errors.New("run not found")
)

// Service is the slice of a hosted agent platform this app needs. The
// azure implementation talks to the real service; emu runs the same
// lifecycle locally against a chat model for development.
type Service interface {
	EnsureAgent(ctx context.Context, spec AgentSpec) (*Agent, error)
	DeleteAgent(ctx context.Context, agentID string) error

	CreateThread(ctx context.Context) (*Thread, error)
	AddMessage(ctx context.Context, threadID, role, text string) (*ThreadMessage, error)

	StartRun(ctx context.Context, threadID, agentID string) (*Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)
	CancelRun(ctx context.Context, threadID, runID string) (*Run, error)

	LatestAssistantMessage(ctx context.Context, threadID string) (*ThreadMessage, error)
}
