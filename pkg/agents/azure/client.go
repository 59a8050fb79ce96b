// Package azure talks to the hosted agent service over its REST
// surface: assistants, threads, runs and tool-output submission.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/agents"
)

// APIError is a non-2xx answer from the service, kept structured so
// callers can tell a rejection from a transport fault.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agent service: http %d %s: %s", e.Status, e.Code, e.Message)
}

type Config struct {
	Endpoint   string
	APIVersion string
	HTTPClient *http.Client
}

type Client struct {
	endpoint   string
	apiVersion string
	http       *http.Client
	tokens     TokenProvider
	logger     *Logger.Logger
}

func New(cfg Config, tokens TokenProvider, lg *Logger.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("agent service endpoint is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2025-05-01"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiVersion: cfg.APIVersion,
		http:       httpClient,
		tokens:     tokens,
		logger:     lg,
	}, nil
}

// wire shapes

type assistantBody struct {
	Model        string                  `json:"model"`
	Name         string                  `json:"name,omitempty"`
	Instructions string                  `json:"instructions,omitempty"`
	Description  string                  `json:"description,omitempty"`
	Tools        []agents.ToolDefinition `json:"tools"`
}

type assistantList struct {
	Data []agents.Agent `json:"data"`
}

type messageBody struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageEnvelope struct {
	ID        string         `json:"id"`
	ThreadID  string         `json:"thread_id"`
	Role      string         `json:"role"`
	CreatedAt int64          `json:"created_at"`
	Content   []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text *struct {
		Value string `json:"value"`
	} `json:"text,omitempty"`
}

type messageList struct {
	Data []messageEnvelope `json:"data"`
}

type runBody struct {
	AssistantID string `json:"assistant_id"`
}

type runEnvelope struct {
	ID             string `json:"id"`
	ThreadID       string `json:"thread_id"`
	AssistantID    string `json:"assistant_id"`
	Status         string `json:"status"`
	RequiredAction *struct {
		Type              string `json:"type"`
		SubmitToolOutputs *struct {
			ToolCalls []struct {
				ID       string `json:"id"`
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"submit_tool_outputs"`
	} `json:"required_action,omitempty"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error,omitempty"`
}

type toolOutputsBody struct {
	ToolOutputs []agents.ToolOutput `json:"tool_outputs"`
}

// EnsureAgent implements agents.Service. An explicit id updates that
// agent; otherwise the configured name is looked up and updated, and
// only a missing agent is created. The pushed tool list always
// replaces the previous one.
func (c *Client) EnsureAgent(ctx context.Context, spec agents.AgentSpec) (*agents.Agent, error) {
	body := assistantBody{
		Model:        spec.Model,
		Name:         spec.Name,
		Instructions: spec.Instructions,
		Description:  spec.Description,
		Tools:        spec.Tools,
	}
	if body.Tools == nil {
		body.Tools = []agents.ToolDefinition{}
	}

	if spec.ID != "" {
		var updated agents.Agent
		if err := c.do(ctx, http.MethodPost, "/assistants/"+spec.ID, nil, body, &updated); err != nil {
			return nil, err
		}
		c.logger.Infof("updated agent %s (%s) with %d tools", updated.ID, updated.Name, len(body.Tools))
		return &updated, nil
	}

	existing, err := c.findByName(ctx, spec.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		var updated agents.Agent
		if err := c.do(ctx, http.MethodPost, "/assistants/"+existing.ID, nil, body, &updated); err != nil {
			return nil, err
		}
		c.logger.Infof("updated agent %s (%s) with %d tools", updated.ID, updated.Name, len(body.Tools))
		return &updated, nil
	}

	var created agents.Agent
	if err := c.do(ctx, http.MethodPost, "/assistants", nil, body, &created); err != nil {
		return nil, err
	}
	c.logger.Infof("created agent %s (%s) with %d tools", created.ID, created.Name, len(body.Tools))
	return &created, nil
}

func (c *Client) findByName(ctx context.Context, name string) (*agents.Agent, error) {
	if name == "" {
		return nil, nil
	}
	var list assistantList
	if err := c.do(ctx, http.MethodGet, "/assistants", url.Values{"limit": {"100"}}, nil, &list); err != nil {
		return nil, err
	}
	for i := range list.Data {
		if list.Data[i].Name == name {
			return &list.Data[i], nil
		}
	}
	return nil, nil
}

// DeleteAgent implements agents.Service.
func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	return c.do(ctx, http.MethodDelete, "/assistants/"+agentID, nil, nil, nil)
}

// CreateThread implements agents.Service.
func (c *Client) CreateThread(ctx context.Context) (*agents.Thread, error) {
	var thread agents.Thread
	if err := c.do(ctx, http.MethodPost, "/threads", nil, struct{}{}, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// AddMessage implements agents.Service.
func (c *Client) AddMessage(ctx context.Context, threadID, role, text string) (*agents.ThreadMessage, error) {
	var env messageEnvelope
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", nil, messageBody{Role: role, Content: text}, &env); err != nil {
		return nil, err
	}
	msg := env.toMessage()
	return &msg, nil
}

// StartRun implements agents.Service.
func (c *Client) StartRun(ctx context.Context, threadID, agentID string) (*agents.Run, error) {
	var env runEnvelope
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", nil, runBody{AssistantID: agentID}, &env); err != nil {
		return nil, err
	}
	return env.toRun(), nil
}

// GetRun implements agents.Service.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	var env runEnvelope
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, nil, &env); err != nil {
		return nil, err
	}
	return env.toRun(), nil
}

// SubmitToolOutputs implements agents.Service.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []agents.ToolOutput) (*agents.Run, error) {
	var env runEnvelope
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	if err := c.do(ctx, http.MethodPost, path, nil, toolOutputsBody{ToolOutputs: outputs}, &env); err != nil {
		return nil, err
	}
	return env.toRun(), nil
}

// CancelRun implements agents.Service.
func (c *Client) CancelRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	var env runEnvelope
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/cancel", nil, struct{}{}, &env); err != nil {
		return nil, err
	}
	return env.toRun(), nil
}

// LatestAssistantMessage implements agents.Service. Messages come back
// newest first; the first assistant entry is the reply.
func (c *Client) LatestAssistantMessage(ctx context.Context, threadID string) (*agents.ThreadMessage, error) {
	query := url.Values{"order": {"desc"}, "limit": {"20"}}
	var list messageList
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages", query, nil, &list); err != nil {
		return nil, err
	}
	for _, env := range list.Data {
		if env.Role == "assistant" {
			msg := env.toMessage()
			return &msg, nil
		}
	}
	return nil, fmt.Errorf("thread %s has no assistant message yet", threadID)
}

func (env messageEnvelope) toMessage() agents.ThreadMessage {
	var text strings.Builder
	for _, block := range env.Content {
		if block.Type == "text" && block.Text != nil {
			text.WriteString(block.Text.Value)
		}
	}
	return agents.ThreadMessage{
		ID:        env.ID,
		ThreadID:  env.ThreadID,
		Role:      env.Role,
		Text:      text.String(),
		CreatedAt: time.Unix(env.CreatedAt, 0).UTC(),
	}
}

func (env runEnvelope) toRun() *agents.Run {
	run := &agents.Run{
		ID:       env.ID,
		ThreadID: env.ThreadID,
		AgentID:  env.AssistantID,
		Status:   agents.RunStatus(env.Status),
	}
	if env.LastError != nil {
		run.LastError = fmt.Sprintf("%s: %s", env.LastError.Code, env.LastError.Message)
	}
	if env.RequiredAction != nil && env.RequiredAction.SubmitToolOutputs != nil {
		for _, tc := range env.RequiredAction.SubmitToolOutputs.ToolCalls {
			if tc.Type != "function" {
				continue
			}
			args := map[string]any{}
			if tc.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					// leave it to the router's kwargs unwrapping
					args = map[string]any{"kwargs": tc.Function.Arguments}
				}
			}
			run.RequiredToolCalls = append(run.RequiredToolCalls, agents.RequiredToolCall{
				CallID:    tc.ID,
				Name:      tc.Function.Name,
				Arguments: args,
			})
		}
	}
	return run
}

// do issues one request with auth and api-version applied and decodes
// the response into out when given.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", c.apiVersion)
	endpoint := c.endpoint + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire service token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("agent service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
