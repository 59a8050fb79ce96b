package emu

import (
	"context"
	"errors"
	"testing"

	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/agents"
	"github.com/xpanvictor/newscap/pkg/agents/adapters"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

// scriptedAdapter replays canned outputs and records every input.
type scriptedAdapter struct {
	outputs []*adapters.ContractOutput
	err     error
	inputs  []adapters.ContractInput
}

func (s *scriptedAdapter) Chat(ctx context.Context, input adapters.ContractInput) (*adapters.ContractOutput, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.outputs) == 0 {
		return &adapters.ContractOutput{Content: "out of script"}, nil
	}
	out := s.outputs[0]
	s.outputs = s.outputs[1:]
	return out, nil
}

func containerStub() toolbridge.FunctionStub {
	return toolbridge.FunctionStub{
		Name:        "create_container",
		Description: "Create a blob container",
		Parameters: toolbridge.StubParameters{
			Type: "object",
			Properties: map[string]toolbridge.StubProperty{
				"name": {Type: "string"},
			},
			Required: []string{"name"},
		},
	}
}

func setupRun(t *testing.T, adapter *scriptedAdapter) (*Service, string, string) {
	t.Helper()
	svc := New(adapter, Logger.New(false))
	ctx := context.Background()

	agent, err := svc.EnsureAgent(ctx, agents.AgentSpec{
		Name:         "news-capsule",
		Model:        "llama3:8b",
		Instructions: "you summarize news",
		Tools:        agents.FunctionTools([]toolbridge.FunctionStub{containerStub()}),
	})
	if err != nil {
		t.Fatalf("EnsureAgent failed: %v", err)
	}
	thread, err := svc.CreateThread(ctx)
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}
	if _, err := svc.AddMessage(ctx, thread.ID, "user", "make me a finance container"); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	return svc, thread.ID, agent.ID
}

func TestRunDirectAnswer(t *testing.T) {
	adapter := &scriptedAdapter{outputs: []*adapters.ContractOutput{{Content: "here you go"}}}
	svc, threadID, agentID := setupRun(t, adapter)
	ctx := context.Background()

	run, err := svc.StartRun(ctx, threadID, agentID)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.Status != agents.RunCompleted {
		t.Errorf("Expected completed, got %s", run.Status)
	}

	msg, err := svc.LatestAssistantMessage(ctx, threadID)
	if err != nil {
		t.Fatalf("LatestAssistantMessage failed: %v", err)
	}
	if msg.Text != "here you go" {
		t.Errorf("Expected assistant reply, got %q", msg.Text)
	}

	if len(adapter.inputs) != 1 {
		t.Fatalf("Expected one model round, got %d", len(adapter.inputs))
	}
	input := adapter.inputs[0]
	if input.Msgs[0].Role != adapters.SYSTEM || input.Msgs[0].Content != "you summarize news" {
		t.Errorf("Instructions not prefixed: %+v", input.Msgs[0])
	}
	if len(input.ToolList) != 1 || input.ToolList[0].Name != "create_container" {
		t.Errorf("Tools not forwarded: %+v", input.ToolList)
	}
}

func TestRunToolCallRoundTrip(t *testing.T) {
	adapter := &scriptedAdapter{outputs: []*adapters.ContractOutput{
		{ToolCalls: []adapters.ContractToolCall{{
			ID:        "call_1",
			ToolName:  "create_container",
			Arguments: map[string]any{"name": "finance-news"},
		}}},
		{Content: "container ready"},
	}}
	svc, threadID, agentID := setupRun(t, adapter)
	ctx := context.Background()

	run, err := svc.StartRun(ctx, threadID, agentID)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.Status != agents.RunRequiresAction {
		t.Fatalf("Expected requires_action, got %s", run.Status)
	}
	if len(run.RequiredToolCalls) != 1 {
		t.Fatalf("Expected one required call, got %d", len(run.RequiredToolCalls))
	}
	call := run.RequiredToolCalls[0]
	if call.Name != "create_container" || call.Arguments["name"] != "finance-news" {
		t.Errorf("Required call mangled: %+v", call)
	}

	run, err = svc.SubmitToolOutputs(ctx, threadID, run.ID, []agents.ToolOutput{
		{CallID: call.CallID, Output: `{"created":"finance-news"}`},
	})
	if err != nil {
		t.Fatalf("SubmitToolOutputs failed: %v", err)
	}
	if run.Status != agents.RunCompleted {
		t.Errorf("Expected completed after outputs, got %s", run.Status)
	}

	msg, err := svc.LatestAssistantMessage(ctx, threadID)
	if err != nil {
		t.Fatalf("LatestAssistantMessage failed: %v", err)
	}
	if msg.Text != "container ready" {
		t.Errorf("Expected final reply, got %q", msg.Text)
	}

	// second round must carry the assistant echo and the tool result
	if len(adapter.inputs) != 2 {
		t.Fatalf("Expected two model rounds, got %d", len(adapter.inputs))
	}
	second := adapter.inputs[1].Msgs
	var sawEcho, sawToolResult bool
	for _, m := range second {
		if m.Role == adapters.ASSISTANT && len(m.ToolCalls) == 1 {
			sawEcho = true
		}
		if m.Role == adapters.TOOL && m.ToolCallID == "call_1" && m.Content == `{"created":"finance-news"}` {
			sawToolResult = true
		}
	}
	if !sawEcho || !sawToolResult {
		t.Errorf("Tool round not replayed to the model: echo=%v result=%v", sawEcho, sawToolResult)
	}
}

func TestSubmitOutputsOnFinishedRun(t *testing.T) {
	adapter := &scriptedAdapter{outputs: []*adapters.ContractOutput{{Content: "done"}}}
	svc, threadID, agentID := setupRun(t, adapter)
	ctx := context.Background()

	run, err := svc.StartRun(ctx, threadID, agentID)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if _, err := svc.SubmitToolOutputs(ctx, threadID, run.ID, nil); err == nil {
		t.Fatal("Expected error submitting outputs to a completed run")
	}
}

func TestCancelPendingRun(t *testing.T) {
	adapter := &scriptedAdapter{outputs: []*adapters.ContractOutput{
		{ToolCalls: []adapters.ContractToolCall{{ID: "call_1", ToolName: "create_container", Arguments: map[string]any{"name": "x"}}}},
	}}
	svc, threadID, agentID := setupRun(t, adapter)
	ctx := context.Background()

	run, err := svc.StartRun(ctx, threadID, agentID)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	cancelled, err := svc.CancelRun(ctx, threadID, run.ID)
	if err != nil {
		t.Fatalf("CancelRun failed: %v", err)
	}
	if cancelled.Status != agents.RunCancelled {
		t.Errorf("Expected cancelled, got %s", cancelled.Status)
	}
	if !cancelled.Status.Terminal() {
		t.Error("cancelled must be terminal")
	}
	if _, err := svc.CancelRun(ctx, threadID, run.ID); err == nil {
		t.Error("Expected error cancelling a finished run")
	}
}

func TestAdapterFailureMarksRunFailed(t *testing.T) {
	adapter := &scriptedAdapter{err: errors.New("model offline")}
	svc, threadID, agentID := setupRun(t, adapter)

	run, err := svc.StartRun(context.Background(), threadID, agentID)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.Status != agents.RunFailed {
		t.Errorf("Expected failed, got %s", run.Status)
	}
	if run.LastError == "" {
		t.Error("Expected LastError to carry the cause")
	}
}

func TestEnsureAgentKeepsIDForName(t *testing.T) {
	svc := New(&scriptedAdapter{}, Logger.New(false))
	ctx := context.Background()

	first, err := svc.EnsureAgent(ctx, agents.AgentSpec{Name: "news-capsule", Model: "llama3:8b"})
	if err != nil {
		t.Fatalf("EnsureAgent failed: %v", err)
	}
	second, err := svc.EnsureAgent(ctx, agents.AgentSpec{Name: "news-capsule", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("EnsureAgent failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected stable id for name, got %s then %s", first.ID, second.ID)
	}
	if second.Model != "gpt-4o" {
		t.Errorf("Expected update to replace model, got %s", second.Model)
	}
}
