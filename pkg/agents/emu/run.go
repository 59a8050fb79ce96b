package emu

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"github.com/xpanvictor/newscap/pkg/agents"
)

const (
	evStart    = "start"
	evAwait    = "await_tools"
	evResume   = "resume"
	evComplete = "complete"
	evFail     = "fail"
	evCancel   = "cancel"
)

// runState guards the run lifecycle with a state machine so illegal
// moves (submitting outputs twice, cancelling a finished run) surface
// as errors instead of corrupting the run.
type runState struct {
	id       string
	threadID string
	agentID  string

	mu        sync.Mutex
	machine   *fsm.FSM
	pending   []agents.RequiredToolCall
	lastError string
}

func newRunState(id, threadID, agentID string) *runState {
	active := []string{
		string(agents.RunQueued),
		string(agents.RunInProgress),
		string(agents.RunRequiresAction),
	}
	return &runState{
		id:       id,
		threadID: threadID,
		agentID:  agentID,
		machine: fsm.NewFSM(
			string(agents.RunQueued),
			fsm.Events{
				{Name: evStart, Src: []string{string(agents.RunQueued), string(agents.RunInProgress)}, Dst: string(agents.RunInProgress)},
				{Name: evAwait, Src: []string{string(agents.RunInProgress)}, Dst: string(agents.RunRequiresAction)},
				{Name: evResume, Src: []string{string(agents.RunRequiresAction)}, Dst: string(agents.RunInProgress)},
				{Name: evComplete, Src: []string{string(agents.RunInProgress)}, Dst: string(agents.RunCompleted)},
				{Name: evFail, Src: active, Dst: string(agents.RunFailed)},
				{Name: evCancel, Src: active, Dst: string(agents.RunCancelled)},
			},
			fsm.Callbacks{},
		),
	}
}

func (r *runState) start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tolerateNoop(r.machine.Event(ctx, evStart))
}

func (r *runState) await(ctx context.Context, calls []agents.RequiredToolCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.machine.Event(ctx, evAwait); err != nil {
		return err
	}
	r.pending = calls
	return nil
}

func (r *runState) resume(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current := r.machine.Current(); current != string(agents.RunRequiresAction) {
		return fmt.Errorf("run %s is %s, not awaiting tool outputs", r.id, current)
	}
	if err := r.machine.Event(ctx, evResume); err != nil {
		return err
	}
	r.pending = nil
	return nil
}

func (r *runState) complete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.machine.Event(ctx, evComplete); err != nil {
		return err
	}
	r.pending = nil
	return nil
}

func (r *runState) fail(ctx context.Context, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.machine.Event(ctx, evFail); err != nil {
		// already terminal, keep the original state
		return
	}
	r.pending = nil
	if cause != nil {
		r.lastError = cause.Error()
	}
}

func (r *runState) cancel(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.machine.Event(ctx, evCancel); err != nil {
		return fmt.Errorf("run %s already %s", r.id, r.machine.Current())
	}
	r.pending = nil
	return nil
}

func tolerateNoop(err error) error {
	if err == nil {
		return nil
	}
	var noop fsm.NoTransitionError
	if errors.As(err, &noop) {
		return nil
	}
	return err
}
