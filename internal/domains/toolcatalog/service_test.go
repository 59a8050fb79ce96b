package toolcatalog

import (
	"context"
	"errors"
	"testing"

	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/agents"
	"github.com/xpanvictor/newscap/pkg/mcp"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

type fakeCatalog struct {
	descs        []mcp.ToolDescriptor
	err          error
	listCalls    int
	refreshCalls int
}

func (f *fakeCatalog) ListTools(ctx context.Context) ([]mcp.ToolDescriptor, error) {
	f.listCalls++
	return f.descs, f.err
}

func (f *fakeCatalog) RefreshTools(ctx context.Context) ([]mcp.ToolDescriptor, error) {
	f.refreshCalls++
	return f.descs, f.err
}

type fakeAgentService struct {
	ensured   []agents.AgentSpec
	ensureErr error
	deleted   []string
}

func (f *fakeAgentService) EnsureAgent(ctx context.Context, spec agents.AgentSpec) (*agents.Agent, error) {
	f.ensured = append(f.ensured, spec)
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	id := spec.ID
	if id == "" {
		id = "asst_test"
	}
	return &agents.Agent{ID: id, Name: spec.Name, Model: spec.Model, Tools: spec.Tools}, nil
}

func (f *fakeAgentService) DeleteAgent(ctx context.Context, agentID string) error {
	f.deleted = append(f.deleted, agentID)
	return nil
}

func (f *fakeAgentService) CreateThread(ctx context.Context) (*agents.Thread, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAgentService) AddMessage(ctx context.Context, threadID, role, text string) (*agents.ThreadMessage, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAgentService) StartRun(ctx context.Context, threadID, agentID string) (*agents.Run, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAgentService) GetRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAgentService) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []agents.ToolOutput) (*agents.Run, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAgentService) CancelRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAgentService) LatestAssistantMessage(ctx context.Context, threadID string) (*agents.ThreadMessage, error) {
	return nil, errors.New("not implemented")
}

func listDescriptor(name string) mcp.ToolDescriptor {
	return mcp.ToolDescriptor{
		Name:        name,
		Description: "catalog tool " + name,
		InputSchema: mcp.Schema{
			Type: "object",
			Properties: map[string]mcp.Schema{
				"container_name": {Type: "string", Description: "target container"},
			},
			Required: []string{"container_name"},
		},
	}
}

func newRegistrar(catalog Catalog, svc agents.Service, cfg config.AgentConfig) (RegistrarService, toolbridge.Registry) {
	registry := toolbridge.NewRegistry()
	return NewRegistrarService(cfg, catalog, registry, svc, Logger.New(true), nil), registry
}

func TestDiscoverRegistersStubsAndAgent(t *testing.T) {
	catalog := &fakeCatalog{descs: []mcp.ToolDescriptor{listDescriptor("list_containers"), listDescriptor("upload_blob")}}
	svc := &fakeAgentService{}
	cfg := config.AgentConfig{
		AgentName:        "newscap-agent",
		Model:            "gpt-4o",
		BingConnectionID: "conn-123",
	}

	registrar, registry := newRegistrar(catalog, svc, cfg)

	err := registrar.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if registry.Len() != 2 {
		t.Errorf("Expected 2 registered stubs, got %d", registry.Len())
	}

	if len(svc.ensured) != 1 {
		t.Fatalf("Expected 1 EnsureAgent call, got %d", len(svc.ensured))
	}

	spec := svc.ensured[0]
	if len(spec.Tools) != 3 {
		t.Fatalf("Expected 2 function tools plus grounding, got %d", len(spec.Tools))
	}
	if spec.Tools[0].Type != "function" || spec.Tools[0].Function == nil {
		t.Errorf("Expected function tool first, got %+v", spec.Tools[0])
	}

	grounding := spec.Tools[2]
	if grounding.Type != "bing_grounding" || grounding.BingGrounding == nil {
		t.Fatalf("Expected grounding tool last, got %+v", grounding)
	}
	if grounding.BingGrounding.Connections[0].ConnectionID != "conn-123" {
		t.Errorf("Expected connection conn-123, got %q", grounding.BingGrounding.Connections[0].ConnectionID)
	}

	if spec.Instructions == "" {
		t.Error("Expected agent instructions to be set")
	}

	if registrar.AgentID() != "asst_test" {
		t.Errorf("Expected agent id asst_test, got %q", registrar.AgentID())
	}
	if registrar.LastRefresh().IsZero() {
		t.Error("Expected LastRefresh to be set")
	}
}

func TestDiscoverWithoutGroundingConnection(t *testing.T) {
	catalog := &fakeCatalog{descs: []mcp.ToolDescriptor{listDescriptor("list_containers")}}
	svc := &fakeAgentService{}

	registrar, _ := newRegistrar(catalog, svc, config.AgentConfig{AgentName: "newscap-agent", Model: "gpt-4o"})

	err := registrar.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if len(svc.ensured[0].Tools) != 1 {
		t.Errorf("Expected only the function tool, got %d tools", len(svc.ensured[0].Tools))
	}
}

func TestDiscoverSchemaErrorAbortsRegistration(t *testing.T) {
	bad := mcp.ToolDescriptor{
		Name: "broken_tool",
		InputSchema: mcp.Schema{
			Type:       "object",
			Properties: map[string]mcp.Schema{"blob": {Type: "binary"}},
		},
	}
	catalog := &fakeCatalog{descs: []mcp.ToolDescriptor{bad}}
	svc := &fakeAgentService{}

	registrar, registry := newRegistrar(catalog, svc, config.AgentConfig{AgentName: "newscap-agent"})

	err := registrar.Discover(context.Background())
	if err == nil {
		t.Fatal("Expected schema error")
	}

	var schemaErr *toolbridge.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected SchemaError, got %v", err)
	}

	if registry.Len() != 0 {
		t.Errorf("Expected empty registry after failure, got %d stubs", registry.Len())
	}
	if len(svc.ensured) != 0 {
		t.Errorf("Expected no EnsureAgent call, got %d", len(svc.ensured))
	}
}

func TestRefreshFailureKeepsPreviousStubs(t *testing.T) {
	catalog := &fakeCatalog{descs: []mcp.ToolDescriptor{listDescriptor("list_containers")}}
	svc := &fakeAgentService{}

	registrar, registry := newRegistrar(catalog, svc, config.AgentConfig{AgentName: "newscap-agent"})

	if err := registrar.Discover(context.Background()); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	catalog.descs = []mcp.ToolDescriptor{listDescriptor("delete_container"), listDescriptor("upload_blob")}
	svc.ensureErr = errors.New("service rejected tool set")

	err := registrar.Refresh(context.Background())
	if err == nil {
		t.Fatal("Expected registration error")
	}

	var regErr *RegistrationError
	if !errors.As(err, &regErr) {
		t.Fatalf("Expected RegistrationError, got %v", err)
	}

	if registry.Len() != 1 {
		t.Fatalf("Expected previous stub set to survive, got %d stubs", registry.Len())
	}
	if _, ok := registry.Get("list_containers"); !ok {
		t.Error("Expected list_containers to still be registered")
	}
}

func TestRefreshSwapsStaleNames(t *testing.T) {
	catalog := &fakeCatalog{descs: []mcp.ToolDescriptor{listDescriptor("list_containers")}}
	svc := &fakeAgentService{}

	registrar, registry := newRegistrar(catalog, svc, config.AgentConfig{AgentName: "newscap-agent"})

	if err := registrar.Discover(context.Background()); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	catalog.descs = []mcp.ToolDescriptor{listDescriptor("download_blob")}

	if err := registrar.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if catalog.refreshCalls != 1 {
		t.Errorf("Expected refresh to bypass the cache, got %d refresh calls", catalog.refreshCalls)
	}

	if _, ok := registry.Get("list_containers"); ok {
		t.Error("Expected stale stub to vanish after refresh")
	}
	if _, ok := registry.Get("download_blob"); !ok {
		t.Error("Expected new stub to be registered")
	}
}

func TestRefreshReusesDiscoveredAgentID(t *testing.T) {
	catalog := &fakeCatalog{descs: []mcp.ToolDescriptor{listDescriptor("list_containers")}}
	svc := &fakeAgentService{}

	registrar, _ := newRegistrar(catalog, svc, config.AgentConfig{AgentName: "newscap-agent"})

	if err := registrar.Discover(context.Background()); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if err := registrar.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(svc.ensured) != 2 {
		t.Fatalf("Expected 2 EnsureAgent calls, got %d", len(svc.ensured))
	}
	if svc.ensured[0].ID != "" {
		t.Errorf("Expected first registration without id, got %q", svc.ensured[0].ID)
	}
	if svc.ensured[1].ID != "asst_test" {
		t.Errorf("Expected second registration to reuse asst_test, got %q", svc.ensured[1].ID)
	}
}

func TestDeleteAgentUsesDiscoveredID(t *testing.T) {
	catalog := &fakeCatalog{descs: []mcp.ToolDescriptor{listDescriptor("list_containers")}}
	svc := &fakeAgentService{}

	registrar, _ := newRegistrar(catalog, svc, config.AgentConfig{AgentName: "newscap-agent"})

	if err := registrar.Discover(context.Background()); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if err := registrar.DeleteAgent(context.Background()); err != nil {
		t.Fatalf("DeleteAgent failed: %v", err)
	}

	if len(svc.deleted) != 1 || svc.deleted[0] != "asst_test" {
		t.Errorf("Expected asst_test to be deleted, got %v", svc.deleted)
	}

	if registrar.AgentID() != "" {
		t.Errorf("Expected agent id cleared after delete, got %q", registrar.AgentID())
	}
}

func TestDeleteAgentWithoutID(t *testing.T) {
	registrar, _ := newRegistrar(&fakeCatalog{}, &fakeAgentService{}, config.AgentConfig{})

	err := registrar.DeleteAgent(context.Background())
	if err == nil {
		t.Fatal("Expected error when no agent id is known")
	}
}

func TestDiscoverConnectionErrorRegistersNothing(t *testing.T) {
	catalog := &fakeCatalog{err: &mcp.ConnectionError{URL: "http://localhost:8000/sse", Op: "list tools", Err: errors.New("connection refused")}}
	svc := &fakeAgentService{}

	registrar, registry := newRegistrar(catalog, svc, config.AgentConfig{AgentName: "newscap-agent"})

	err := registrar.Discover(context.Background())
	if err == nil {
		t.Fatal("Expected discovery to fail when the tool server is down")
	}

	var connErr *mcp.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Expected ConnectionError, got %v", err)
	}

	if registry.Len() != 0 {
		t.Errorf("Expected no stubs registered, got %d", registry.Len())
	}
	if len(svc.ensured) != 0 {
		t.Errorf("Expected no EnsureAgent call, got %d", len(svc.ensured))
	}
	if registrar.AgentID() != "" {
		t.Errorf("Expected no agent id, got %q", registrar.AgentID())
	}
}
