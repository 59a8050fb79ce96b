package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/internal/constants/prompts"
	convoRepo "github.com/xpanvictor/newscap/internal/repository/conversation"
	"github.com/xpanvictor/newscap/internal/tracelog"
	"github.com/xpanvictor/newscap/internal/types"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/agents"
	"github.com/xpanvictor/newscap/pkg/botframe"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

var tracer = otel.Tracer("newscap/conversation")

// Spoken lines of the name-prompt flow and the turn error path.
const (
	namePromptText = "I am your AI Assistant and here to help you with your research and search on the internet on various topics. Can you help me with your name?"
	turnErrorText  = "The bot encountered an error or bug."
	turnErrorHint  = "To continue to run this bot, please fix the bot source code."
)

const (
	defaultPollInterval = time.Second
	defaultRunWait      = 5 * time.Minute

	echoTimeFormat = "03:04:05 PM, Monday, January 02 of 2006"
)

// AgentResolver hands out the currently registered agent id.
type AgentResolver interface {
	AgentID() string
}

// HostService drives one conversation turn per inbound activity.
type HostService interface {
	OnActivity(ctx context.Context, activity botframe.Activity) error
}

type hostService struct {
	agentCfg config.AgentConfig
	botCfg   config.BotConfig

	store     convoRepo.Store
	agents    agents.Service
	router    *toolbridge.Router
	resolver  AgentResolver
	connector botframe.Connector
	traces    tracelog.Ring
	logger    *Logger.Logger

	// one turn at a time per conversation
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// OnActivity implements HostService.
func (h *hostService) OnActivity(ctx context.Context, activity botframe.Activity) error {
	switch activity.Type {
	case botframe.ActivityConversationUpdate:
		return h.onConversationUpdate(ctx, activity)
	case botframe.ActivityMessage:
		return h.onMessage(ctx, activity)
	default:
		h.logger.Debugf("ignoring %s activity on %s", activity.Type, activity.Conversation.ID)
		return nil
	}
}

func (h *hostService) onConversationUpdate(ctx context.Context, activity botframe.Activity) error {
	for _, member := range activity.MembersAdded {
		if member.ID == activity.Recipient.ID {
			continue
		}
		if err := h.reply(ctx, activity, prompts.GREETING); err != nil {
			return err
		}
	}
	return nil
}

func (h *hostService) onMessage(ctx context.Context, activity botframe.Activity) error {
	if activity.Conversation.ID == "" {
		return errors.New("message without conversation id")
	}

	ctx, span := tracer.Start(ctx, "conversation.turn",
		trace.WithAttributes(
			attribute.String("conversation.id", activity.Conversation.ID),
			attribute.String("channel.id", activity.ChannelID),
		))
	defer span.End()

	unlock := h.lockConversation(activity.Conversation.ID)
	defer unlock()

	if err := h.runTurn(ctx, activity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "turn failed")
		h.failTurn(ctx, activity, err)
		return err
	}
	return nil
}

func (h *hostService) runTurn(ctx context.Context, activity botframe.Activity) error {
	convID := activity.Conversation.ID

	profile, err := h.store.GetUserProfile(ctx, activity.From.ID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	data, err := h.store.GetConversationData(ctx, convID)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	if !profile.HasName() {
		return h.nameTurn(ctx, activity, profile, data)
	}

	data.ChannelID = activity.ChannelID
	if activity.Timestamp != nil {
		data.Timestamp = activity.Timestamp.Local()
	} else {
		data.Timestamp = time.Now()
	}

	if data.ThreadID == "" {
		thread, err := h.agents.CreateThread(ctx)
		if err != nil {
			return fmt.Errorf("create thread: %w", err)
		}
		data.ThreadID = thread.ID
		h.logger.Infof("bound thread %s to conversation %s", thread.ID, convID)
	}
	if err := h.store.SaveConversationData(ctx, convID, data); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}

	h.appendTranscript(ctx, convID, "user", activity.Text)

	if _, err := h.agents.AddMessage(ctx, data.ThreadID, "user", activity.Text); err != nil {
		return fmt.Errorf("add message: %w", err)
	}

	agentID := h.resolver.AgentID()
	if agentID == "" {
		agentID = h.agentCfg.AgentID
	}
	if agentID == "" {
		return errors.New("no registered agent to run")
	}

	run, err := h.agents.StartRun(ctx, data.ThreadID, agentID)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	h.logger.Debugf("run %s started on thread %s", run.ID, data.ThreadID)

	run, err = h.pollRun(ctx, data.ThreadID, run)
	if err != nil {
		return err
	}

	if run.Status != agents.RunCompleted {
		detail := run.LastError
		if detail == "" {
			detail = "no further detail"
		}
		return fmt.Errorf("agent run %s ended as %s: %s", run.ID, run.Status, detail)
	}

	msg, err := h.agents.LatestAssistantMessage(ctx, data.ThreadID)
	if err != nil {
		return fmt.Errorf("fetch reply: %w", err)
	}

	h.appendTranscript(ctx, convID, "assistant", msg.Text)

	text := msg.Text
	if h.botCfg.EchoState {
		text = fmt.Sprintf("%s\n\n(channel %s, %s)", text, data.ChannelID, data.Timestamp.Format(echoTimeFormat))
	}
	if err := h.reply(ctx, activity, text); err != nil {
		return err
	}

	h.recordTrace(activity, "outbound", msg.Text)
	return nil
}

// nameTurn runs the prompt-capture-confirm exchange that fills the
// user profile before any agent turn happens.
func (h *hostService) nameTurn(ctx context.Context, activity botframe.Activity, profile types.UserProfile, data types.ConversationData) error {
	convID := activity.Conversation.ID

	if data.PromptedForName {
		name := strings.TrimSpace(activity.Text)
		if name == "" {
			return h.reply(ctx, activity, namePromptText)
		}

		profile.Name = name
		data.PromptedForName = false

		if err := h.store.SaveUserProfile(ctx, activity.From.ID, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if err := h.store.SaveConversationData(ctx, convID, data); err != nil {
			return fmt.Errorf("save conversation: %w", err)
		}
		return h.reply(ctx, activity, fmt.Sprintf("Thanks %s. Let me know how can I help you today", name))
	}

	data.PromptedForName = true
	if err := h.store.SaveConversationData(ctx, convID, data); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return h.reply(ctx, activity, namePromptText)
}

// pollRun watches the run until it leaves the active states, feeding
// tool outputs back whenever the agent blocks on requires_action.
func (h *hostService) pollRun(ctx context.Context, threadID string, run *agents.Run) (*agents.Run, error) {
	interval := h.agentCfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	wait := h.agentCfg.RunWait
	if wait == 0 {
		wait = defaultRunWait
	}

	// negative run_wait polls forever
	var deadline time.Time
	if wait > 0 {
		deadline = time.Now().Add(wait)
	}

	ctx, span := tracer.Start(ctx, "conversation.run_wait",
		trace.WithAttributes(attribute.String("run.id", run.ID)))
	defer span.End()

	for !run.Status.Terminal() {
		if !deadline.IsZero() && time.Now().After(deadline) {
			if cancelled, err := h.agents.CancelRun(ctx, threadID, run.ID); err == nil {
				run = cancelled
			}
			return run, fmt.Errorf("run %s exceeded the %s wait cap", run.ID, wait)
		}

		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-time.After(interval):
		}

		next, err := h.agents.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return run, fmt.Errorf("poll run: %w", err)
		}
		run = next

		if run.Status != agents.RunRequiresAction {
			continue
		}

		if len(run.RequiredToolCalls) == 0 {
			h.logger.Warnf("run %s requires action with no tool calls, cancelling", run.ID)
			if cancelled, err := h.agents.CancelRun(ctx, threadID, run.ID); err == nil {
				run = cancelled
			}
			return run, fmt.Errorf("run %s requested action without tool calls", run.ID)
		}

		outputs := h.dispatchCalls(ctx, run.RequiredToolCalls)
		run, err = h.agents.SubmitToolOutputs(ctx, threadID, run.ID, outputs)
		if err != nil {
			return run, fmt.Errorf("submit tool outputs: %w", err)
		}
	}

	return run, nil
}

// dispatchCalls routes the blocked calls through the tool bridge. A
// failed invocation comes back as an error-shaped output, never as an
// absent one.
func (h *hostService) dispatchCalls(ctx context.Context, calls []agents.RequiredToolCall) []agents.ToolOutput {
	ctx, span := tracer.Start(ctx, "conversation.tool_dispatch",
		trace.WithAttributes(attribute.Int("tool.call_count", len(calls))))
	defer span.End()

	reqs := make([]toolbridge.InvocationRequest, 0, len(calls))
	for _, call := range calls {
		reqs = append(reqs, toolbridge.InvocationRequest{
			CallID:    call.CallID,
			Name:      call.Name,
			Arguments: call.Arguments,
		})
	}

	routed := h.router.DispatchToolCalls(ctx, reqs)

	outputs := make([]agents.ToolOutput, 0, len(routed))
	for _, out := range routed {
		outputs = append(outputs, agents.ToolOutput{CallID: out.CallID, Output: out.Output})
	}
	return outputs
}

// failTurn reports a broken turn to the user and the diagnostics ring.
// Failures in here are logged only, a broken turn must not crash the
// host.
func (h *hostService) failTurn(ctx context.Context, activity botframe.Activity, turnErr error) {
	h.logger.Errorf("turn failed on %s: %v", activity.Conversation.ID, turnErr)

	h.recordTrace(activity, "turn", turnErr.Error())

	if err := h.reply(ctx, activity, turnErrorText); err != nil {
		h.logger.Errorf("error reply failed: %v", err)
		return
	}
	if err := h.reply(ctx, activity, turnErrorHint); err != nil {
		h.logger.Errorf("error reply failed: %v", err)
	}

	// the emulator renders trace activities with the raw error
	if activity.ChannelID == "emulator" {
		trace := activity.CreateTrace("on_turn_error Trace", "TurnError", "https://www.botframework.com/schemas/error", turnErr.Error())
		if _, err := h.connector.ReplyTo(ctx, activity, trace); err != nil {
			h.logger.Warnf("trace delivery failed: %v", err)
		}
	}
}

func (h *hostService) reply(ctx context.Context, activity botframe.Activity, text string) error {
	if _, err := h.connector.ReplyTo(ctx, activity, activity.CreateReply(text)); err != nil {
		return fmt.Errorf("deliver reply: %w", err)
	}
	return nil
}

func (h *hostService) recordTrace(activity botframe.Activity, stage, detail string) {
	when := time.Now()
	if activity.Timestamp != nil {
		when = *activity.Timestamp
	}
	record := tracelog.TurnTrace{
		When:           when,
		ConversationID: activity.Conversation.ID,
		ActivityID:     activity.ID,
		Channel:        activity.ChannelID,
		Stage:          stage,
		Detail:         detail,
	}
	if err := h.traces.Record(record); err != nil {
		h.logger.Warnf("trace record failed: %v", err)
	}
}

func (h *hostService) appendTranscript(ctx context.Context, convID, role, text string) {
	if text == "" {
		return
	}
	entry := types.TranscriptEntry{
		ConversationID: convID,
		Role:           role,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	if err := h.store.AppendTranscript(ctx, entry); err != nil {
		h.logger.Warnf("transcript append failed for %s: %v", convID, err)
	}
}

func (h *hostService) lockConversation(id string) func() {
	h.locksMu.Lock()
	lock, ok := h.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		h.locks[id] = lock
	}
	h.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// NewHostService creates the webhook turn engine
func NewHostService(
	agentCfg config.AgentConfig,
	botCfg config.BotConfig,
	store convoRepo.Store,
	svc agents.Service,
	router *toolbridge.Router,
	resolver AgentResolver,
	connector botframe.Connector,
	traces tracelog.Ring,
	logger *Logger.Logger,
) HostService {
	return &hostService{
		agentCfg:  agentCfg,
		botCfg:    botCfg,
		store:     store,
		agents:    svc,
		router:    router,
		resolver:  resolver,
		connector: connector,
		traces:    traces,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}
