// Package emu is a local, in-memory stand-in for the hosted agent
// service. It keeps the same thread/run lifecycle, including the
// requires_action pause, but answers turns through a chat adapter so
// the whole app can run against ollama or any configured model.
package emu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/agents"
	"github.com/xpanvictor/newscap/pkg/agents/adapters"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

type threadState struct {
	id         string
	msgs       []adapters.ContractMessage
	transcript []agents.ThreadMessage
}

type Service struct {
	adapter adapters.ChatAdapter
	logger  *Logger.Logger

	mu      sync.RWMutex
	agents  map[string]*agents.Agent
	threads map[string]*threadState
	runs    map[string]*runState
}

func New(adapter adapters.ChatAdapter, lg *Logger.Logger) *Service {
	return &Service{
		adapter: adapter,
		logger:  lg,
		agents:  make(map[string]*agents.Agent),
		threads: make(map[string]*threadState),
		runs:    make(map[string]*runState),
	}
}

// EnsureAgent implements agents.Service.
func (s *Service) EnsureAgent(ctx context.Context, spec agents.AgentSpec) (*agents.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := spec.ID
	if id == "" {
		for _, existing := range s.agents {
			if existing.Name == spec.Name && spec.Name != "" {
				id = existing.ID
				break
			}
		}
	}
	if id == "" {
		id = "asst_" + uuid.NewString()
	}

	agent := &agents.Agent{
		ID:           id,
		Name:         spec.Name,
		Model:        spec.Model,
		Instructions: spec.Instructions,
		Description:  spec.Description,
		Tools:        spec.Tools,
		CreatedAt:    time.Now().Unix(),
	}
	s.agents[id] = agent
	s.logger.Infof("emu: agent %s (%s) holds %d tools", id, spec.Name, len(spec.Tools))
	return agent, nil
}

// DeleteAgent implements agents.Service.
func (s *Service) DeleteAgent(ctx context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[agentID]; !ok {
		return fmt.Errorf("agent %s: %w", agentID, agents.ErrAgentNotFound)
	}
	delete(s.agents, agentID)
	return nil
}

// CreateThread implements agents.Service.
func (s *Service) CreateThread(ctx context.Context) (*agents.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := "thread_" + uuid.NewString()
	s.threads[id] = &threadState{id: id}
	return &agents.Thread{ID: id, CreatedAt: time.Now().Unix()}, nil
}

// AddMessage implements agents.Service.
func (s *Service) AddMessage(ctx context.Context, threadID, role, text string) (*agents.ThreadMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.threads[threadID]
	if !ok {
		return nil, fmt.Errorf("thread %s: %w", threadID, agents.ErrThreadNotFound)
	}
	now := time.Now()
	thread.msgs = append(thread.msgs, adapters.ContractMessage{
		Role:      adapters.MsgRole(role),
		Content:   text,
		CreatedAt: now,
	})
	msg := agents.ThreadMessage{
		ID:        "msg_" + uuid.NewString(),
		ThreadID:  threadID,
		Role:      role,
		Text:      text,
		CreatedAt: now,
	}
	thread.transcript = append(thread.transcript, msg)
	return &msg, nil
}

// StartRun implements agents.Service. The first model round happens
// before StartRun returns, so callers observe requires_action or a
// terminal state on their first poll.
func (s *Service) StartRun(ctx context.Context, threadID, agentID string) (*agents.Run, error) {
	s.mu.Lock()
	thread, ok := s.threads[threadID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("thread %s: %w", threadID, agents.ErrThreadNotFound)
	}
	agent, ok := s.agents[agentID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("agent %s: %w", agentID, agents.ErrAgentNotFound)
	}

	rs := newRunState("run_"+uuid.NewString(), thread.id, agent.ID)
	s.runs[rs.id] = rs
	s.mu.Unlock()

	if err := s.advance(ctx, rs, thread, agent); err != nil {
		s.failRun(ctx, rs, err)
	}
	return s.snapshotRun(rs), nil
}

// GetRun implements agents.Service.
func (s *Service) GetRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	s.mu.RLock()
	rs, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok || rs.threadID != threadID {
		return nil, fmt.Errorf("run %s: %w", runID, agents.ErrRunNotFound)
	}
	return s.snapshotRun(rs), nil
}

// SubmitToolOutputs implements agents.Service. Outputs join the thread
// as tool messages and the model gets another round.
func (s *Service) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []agents.ToolOutput) (*agents.Run, error) {
	s.mu.Lock()
	rs, ok := s.runs[runID]
	if !ok || rs.threadID != threadID {
		s.mu.Unlock()
		return nil, fmt.Errorf("run %s: %w", runID, agents.ErrRunNotFound)
	}
	thread := s.threads[threadID]
	agent := s.agents[rs.agentID]
	s.mu.Unlock()

	if err := rs.resume(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, out := range outputs {
		thread.msgs = append(thread.msgs, adapters.ContractMessage{
			Role:       adapters.TOOL,
			Content:    out.Output,
			ToolCallID: out.CallID,
			CreatedAt:  time.Now(),
		})
	}
	s.mu.Unlock()
	if err := s.advance(ctx, rs, thread, agent); err != nil {
		s.failRun(ctx, rs, err)
	}
	return s.snapshotRun(rs), nil
}

// CancelRun implements agents.Service.
func (s *Service) CancelRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	s.mu.RLock()
	rs, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok || rs.threadID != threadID {
		return nil, fmt.Errorf("run %s: %w", runID, agents.ErrRunNotFound)
	}
	if err := rs.cancel(ctx); err != nil {
		return nil, err
	}
	s.logger.Infof("emu: run %s cancelled", runID)
	return s.snapshotRun(rs), nil
}

// LatestAssistantMessage implements agents.Service.
func (s *Service) LatestAssistantMessage(ctx context.Context, threadID string) (*agents.ThreadMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thread, ok := s.threads[threadID]
	if !ok {
		return nil, fmt.Errorf("thread %s: %w", threadID, agents.ErrThreadNotFound)
	}
	for i := len(thread.transcript) - 1; i >= 0; i-- {
		if thread.transcript[i].Role == "assistant" {
			msg := thread.transcript[i]
			return &msg, nil
		}
	}
	return nil, fmt.Errorf("thread %s has no assistant message yet", threadID)
}

// advance runs one model round and moves the run to requires_action or
// completed. The thread lock is not held across the model call.
func (s *Service) advance(ctx context.Context, rs *runState, thread *threadState, agent *agents.Agent) error {
	if err := rs.start(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	input := adapters.ContractInput{
		Model:    agent.Model,
		Msgs:     buildMessages(agent.Instructions, thread.msgs),
		ToolList: functionStubs(agent.Tools),
	}
	s.mu.RUnlock()

	out, err := s.adapter.Chat(ctx, input)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(out.ToolCalls) > 0 {
		thread.msgs = append(thread.msgs, adapters.ContractMessage{
			Role:      adapters.ASSISTANT,
			Content:   out.Content,
			CreatedAt: out.CreatedAt,
			ToolCalls: out.ToolCalls,
		})
		return rs.await(ctx, requiredCalls(out.ToolCalls))
	}

	now := time.Now()
	thread.msgs = append(thread.msgs, adapters.ContractMessage{
		Role:      adapters.ASSISTANT,
		Content:   out.Content,
		CreatedAt: now,
	})
	thread.transcript = append(thread.transcript, agents.ThreadMessage{
		ID:        "msg_" + uuid.NewString(),
		ThreadID:  thread.id,
		Role:      "assistant",
		Text:      out.Content,
		CreatedAt: now,
	})
	return rs.complete(ctx)
}

func (s *Service) failRun(ctx context.Context, rs *runState, cause error) {
	s.logger.Errorf("emu: run %s failed: %v", rs.id, cause)
	rs.fail(ctx, cause)
}

func (s *Service) snapshotRun(rs *runState) *agents.Run {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	run := &agents.Run{
		ID:        rs.id,
		ThreadID:  rs.threadID,
		AgentID:   rs.agentID,
		Status:    agents.RunStatus(rs.machine.Current()),
		LastError: rs.lastError,
	}
	run.RequiredToolCalls = append(run.RequiredToolCalls, rs.pending...)
	return run
}

func buildMessages(instructions string, history []adapters.ContractMessage) []adapters.ContractMessage {
	msgs := make([]adapters.ContractMessage, 0, len(history)+1)
	if instructions != "" {
		msgs = append(msgs, adapters.ContractMessage{Role: adapters.SYSTEM, Content: instructions})
	}
	return append(msgs, history...)
}

func functionStubs(defs []agents.ToolDefinition) []toolbridge.FunctionStub {
	var stubs []toolbridge.FunctionStub
	for _, def := range defs {
		if def.Type == "function" && def.Function != nil {
			stubs = append(stubs, *def.Function)
		}
	}
	return stubs
}

func requiredCalls(calls []adapters.ContractToolCall) []agents.RequiredToolCall {
	out := make([]agents.RequiredToolCall, len(calls))
	for i, call := range calls {
		out[i] = agents.RequiredToolCall{
			CallID:    call.ID,
			Name:      call.ToolName,
			Arguments: call.Arguments,
		}
	}
	return out
}
