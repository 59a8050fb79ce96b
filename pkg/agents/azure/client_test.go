package azure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/agents"
)

type fakeService struct {
	mux *http.ServeMux

	agents      map[string]map[string]any
	createCalls int
	updateCalls int
	lastBody    map[string]any
	lastAuth    string
	lastVersion string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{mux: http.NewServeMux(), agents: map[string]map[string]any{}}

	record := func(r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		f.lastVersion = r.URL.Query().Get("api-version")
	}

	f.mux.HandleFunc("/assistants", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		switch r.Method {
		case http.MethodGet:
			data := []map[string]any{}
			for _, a := range f.agents {
				data = append(data, a)
			}
			json.NewEncoder(w).Encode(map[string]any{"data": data})
		case http.MethodPost:
			f.createCalls++
			body := decodeBody(t, r)
			f.lastBody = body
			agent := map[string]any{"id": "asst_001", "name": body["name"], "model": body["model"]}
			f.agents["asst_001"] = agent
			json.NewEncoder(w).Encode(agent)
		}
	})
	f.mux.HandleFunc("/assistants/", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.Method == http.MethodDelete {
			json.NewEncoder(w).Encode(map[string]any{"deleted": true})
			return
		}
		f.updateCalls++
		body := decodeBody(t, r)
		f.lastBody = body
		id := r.URL.Path[len("/assistants/"):]
		json.NewEncoder(w).Encode(map[string]any{"id": id, "name": body["name"], "model": body["model"]})
	})
	f.mux.HandleFunc("/threads", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		json.NewEncoder(w).Encode(map[string]any{"id": "thread_001", "created_at": 1700000000})
	})
	return f
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	body := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	return body
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{Endpoint: srv.URL, APIVersion: "2025-05-01"}, StaticTokenProvider("test-token"), Logger.New(false))
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	return client
}

func TestEnsureAgentCreatesWhenMissing(t *testing.T) {
	fake := newFakeService(t)
	client := newTestClient(t, fake.mux)

	stub := agents.ToolDefinition{Type: "function"}
	agent, err := client.EnsureAgent(context.Background(), agents.AgentSpec{
		Name:         "news-capsule",
		Model:        "gpt-4o",
		Instructions: "summarize the news",
		Tools:        []agents.ToolDefinition{stub},
	})
	if err != nil {
		t.Fatalf("EnsureAgent failed: %v", err)
	}
	if agent.ID != "asst_001" {
		t.Errorf("Expected agent id asst_001, got %s", agent.ID)
	}
	if fake.createCalls != 1 || fake.updateCalls != 0 {
		t.Errorf("Expected one create and no update, got %d and %d", fake.createCalls, fake.updateCalls)
	}
	if fake.lastBody["model"] != "gpt-4o" || fake.lastBody["instructions"] != "summarize the news" {
		t.Errorf("Agent body not forwarded: %v", fake.lastBody)
	}
	if fake.lastAuth != "Bearer test-token" {
		t.Errorf("Expected bearer auth, got %q", fake.lastAuth)
	}
	if fake.lastVersion != "2025-05-01" {
		t.Errorf("Expected api-version query, got %q", fake.lastVersion)
	}
}

func TestEnsureAgentUpdatesExisting(t *testing.T) {
	fake := newFakeService(t)
	fake.agents["asst_007"] = map[string]any{"id": "asst_007", "name": "news-capsule", "model": "gpt-4o"}
	client := newTestClient(t, fake.mux)

	agent, err := client.EnsureAgent(context.Background(), agents.AgentSpec{Name: "news-capsule", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("EnsureAgent failed: %v", err)
	}
	if agent.ID != "asst_007" {
		t.Errorf("Expected existing agent asst_007, got %s", agent.ID)
	}
	if fake.createCalls != 0 || fake.updateCalls != 1 {
		t.Errorf("Expected update instead of create, got create=%d update=%d", fake.createCalls, fake.updateCalls)
	}
}

func TestGetRunDecodesRequiredAction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/threads/thread_001/runs/run_001", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": "run_001", "thread_id": "thread_001", "assistant_id": "asst_001",
			"status": "requires_action",
			"required_action": map[string]any{
				"type": "submit_tool_outputs",
				"submit_tool_outputs": map[string]any{
					"tool_calls": []map[string]any{{
						"id": "call_1", "type": "function",
						"function": map[string]any{"name": "create_container", "arguments": `{"name":"finance-news"}`},
					}},
				},
			},
		})
	})
	client := newTestClient(t, mux)

	run, err := client.GetRun(context.Background(), "thread_001", "run_001")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != agents.RunRequiresAction {
		t.Errorf("Expected requires_action, got %s", run.Status)
	}
	if run.Status.Terminal() {
		t.Error("requires_action must not be terminal")
	}
	if len(run.RequiredToolCalls) != 1 {
		t.Fatalf("Expected one tool call, got %d", len(run.RequiredToolCalls))
	}
	call := run.RequiredToolCalls[0]
	if call.CallID != "call_1" || call.Name != "create_container" {
		t.Errorf("Tool call mangled: %+v", call)
	}
	if call.Arguments["name"] != "finance-news" {
		t.Errorf("Expected decoded arguments, got %v", call.Arguments)
	}
}

func TestSubmitToolOutputs(t *testing.T) {
	var gotBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/threads/thread_001/runs/run_001/submit_tool_outputs", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"id": "run_001", "thread_id": "thread_001", "status": "in_progress"})
	})
	client := newTestClient(t, mux)

	run, err := client.SubmitToolOutputs(context.Background(), "thread_001", "run_001", []agents.ToolOutput{
		{CallID: "call_1", Output: `{"created":"finance-news"}`},
	})
	if err != nil {
		t.Fatalf("SubmitToolOutputs failed: %v", err)
	}
	if run.Status != agents.RunInProgress {
		t.Errorf("Expected in_progress, got %s", run.Status)
	}
	outputs, ok := gotBody["tool_outputs"].([]any)
	if !ok || len(outputs) != 1 {
		t.Fatalf("Expected one tool output, got %v", gotBody)
	}
	first := outputs[0].(map[string]any)
	if first["tool_call_id"] != "call_1" || first["output"] != `{"created":"finance-news"}` {
		t.Errorf("Tool output mangled: %v", first)
	}
}

func TestLatestAssistantMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/threads/thread_001/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("order") != "desc" {
			t.Errorf("Expected order=desc, got %q", r.URL.Query().Get("order"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "msg_3", "thread_id": "thread_001", "role": "assistant", "content": []map[string]any{
					{"type": "text", "text": map[string]any{"value": "Here are "}},
					{"type": "text", "text": map[string]any{"value": "the headlines."}},
				}},
				{"id": "msg_2", "thread_id": "thread_001", "role": "user", "content": []map[string]any{
					{"type": "text", "text": map[string]any{"value": "latest news?"}},
				}},
			},
		})
	})
	client := newTestClient(t, mux)

	msg, err := client.LatestAssistantMessage(context.Background(), "thread_001")
	if err != nil {
		t.Fatalf("LatestAssistantMessage failed: %v", err)
	}
	if msg.ID != "msg_3" {
		t.Errorf("Expected newest assistant message, got %s", msg.ID)
	}
	if msg.Text != "Here are the headlines." {
		t.Errorf("Expected joined text parts, got %q", msg.Text)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/threads", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "invalid_request", "message": "model missing"},
		})
	})
	client := newTestClient(t, mux)

	_, err := client.CreateThread(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "invalid_request" {
		t.Errorf("APIError not decoded: %+v", apiErr)
	}
}
