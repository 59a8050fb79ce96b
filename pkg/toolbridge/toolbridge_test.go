package toolbridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/mcp"
)

func catalogFixture() []mcp.ToolDescriptor {
	return []mcp.ToolDescriptor{
		{
			Name:        "list_containers",
			Description: "List blob containers",
			InputSchema: mcp.Schema{Type: "object"},
		},
		{
			Name:        "create_container",
			Description: "Create a blob container",
			InputSchema: mcp.Schema{
				Type: "object",
				Properties: map[string]mcp.Schema{
					"name": {Type: "string", Description: "container name"},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        "upload_blob",
			Description: "Upload a blob",
			InputSchema: mcp.Schema{
				Type: "object",
				Properties: map[string]mcp.Schema{
					"container": {Type: "string"},
					"name":      {Type: "string"},
					"content":   {Type: "string"},
					"overwrite": {Type: "boolean"},
				},
				Required: []string{"container", "name", "content"},
			},
		},
	}
}

func TestSynthesizeOneStubPerDescriptor(t *testing.T) {
	descs := catalogFixture()
	stubs, err := SynthesizeAll(descs)
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}
	if len(stubs) != len(descs) {
		t.Fatalf("Expected %d stubs, got %d", len(descs), len(stubs))
	}
	for i, stub := range stubs {
		if stub.Name != descs[i].Name {
			t.Errorf("Expected stub %d named %q, got %q", i, descs[i].Name, stub.Name)
		}
	}
}

func TestSynthesizeNoParamsTool(t *testing.T) {
	stubs, err := SynthesizeAll([]mcp.ToolDescriptor{catalogFixture()[0]})
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}
	if len(stubs) != 1 {
		t.Fatalf("Expected exactly one stub, got %d", len(stubs))
	}
	stub := stubs[0]
	if stub.Name != "list_containers" {
		t.Errorf("Expected name list_containers, got %q", stub.Name)
	}
	if len(stub.Parameters.Properties) != 0 {
		t.Errorf("Expected empty parameter list, got %d properties", len(stub.Parameters.Properties))
	}
	if len(stub.Parameters.Required) != 0 {
		t.Errorf("Expected no required parameters, got %v", stub.Parameters.Required)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	first, err := SynthesizeAll(catalogFixture())
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}
	second, err := SynthesizeAll(catalogFixture())
	if err != nil {
		t.Fatalf("re-synthesis failed: %v", err)
	}
	if !bytes.Equal(CanonicalSet(first), CanonicalSet(second)) {
		t.Error("Expected byte-identical stub sets for an unchanged catalog")
	}
}

func TestSynthesizeUnsupportedType(t *testing.T) {
	desc := mcp.ToolDescriptor{
		Name: "bad_tool",
		InputSchema: mcp.Schema{
			Type: "object",
			Properties: map[string]mcp.Schema{
				"payload": {Type: "binary"},
			},
		},
	}

	_, err := SynthesizeAll([]mcp.ToolDescriptor{catalogFixture()[0], desc})
	if err == nil {
		t.Fatal("Expected synthesis to fail on unsupported type")
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Expected SchemaError, got %T: %v", err, err)
	}
	if se.Tool != "bad_tool" || se.Property != "payload" {
		t.Errorf("Expected error naming bad_tool.payload, got %s.%s", se.Tool, se.Property)
	}
}

func TestSynthesizeNestedAndArray(t *testing.T) {
	desc := mcp.ToolDescriptor{
		Name: "search_capsules",
		InputSchema: mcp.Schema{
			Type: "object",
			Properties: map[string]mcp.Schema{
				"tags": {Type: "array", Items: &mcp.Schema{Type: "string"}},
				"filter": {Type: "object", Properties: map[string]mcp.Schema{
					"limit": {Type: "integer"},
				}},
			},
		},
	}
	stub, err := Synthesize(desc)
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}
	if stub.Parameters.Properties["tags"].Items == nil || stub.Parameters.Properties["tags"].Items.Type != "string" {
		t.Error("array item type not carried over")
	}
	if stub.Parameters.Properties["filter"].Properties["limit"].Type != "integer" {
		t.Error("nested object property not carried over")
	}
}

func TestRegistryReplaceAll(t *testing.T) {
	reg := NewRegistry()
	stubs, _ := SynthesizeAll(catalogFixture())
	reg.ReplaceAll(stubs)

	if reg.Len() != 3 {
		t.Fatalf("Expected 3 registered stubs, got %d", reg.Len())
	}
	if _, ok := reg.Get("create_container"); !ok {
		t.Error("Expected create_container in registry")
	}

	// a later discovery run replaces everything
	reg.ReplaceAll(stubs[:1])
	if reg.Len() != 1 {
		t.Errorf("Expected 1 stub after replacement, got %d", reg.Len())
	}
	if _, ok := reg.Get("create_container"); ok {
		t.Error("stale stub survived a catalog replacement")
	}
	names := reg.Names()
	if len(names) != 1 || names[0] != "list_containers" {
		t.Errorf("Expected [list_containers], got %v", names)
	}
}

type fakeRemote struct {
	calls    int
	lastName string
	lastArgs map[string]any
	out      string
	err      error
}

func (f *fakeRemote) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	f.calls++
	f.lastName = name
	f.lastArgs = args
	return f.out, f.err
}

func newTestRouter(t *testing.T, remote *fakeRemote) *Router {
	t.Helper()
	reg := NewRegistry()
	stubs, err := SynthesizeAll(catalogFixture())
	if err != nil {
		t.Fatalf("fixture synthesis failed: %v", err)
	}
	reg.ReplaceAll(stubs)
	return NewRouter(reg, remote, Logger.New(true), nil)
}

func TestRouterForwardsArguments(t *testing.T) {
	remote := &fakeRemote{out: `{"status":"created"}`}
	router := newTestRouter(t, remote)

	out, err := router.Dispatch(context.Background(), InvocationRequest{
		CallID:    "call_1",
		Name:      "create_container",
		Arguments: map[string]any{"name": "finance-news"},
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if out != `{"status":"created"}` {
		t.Errorf("Expected raw result unmodified, got %q", out)
	}
	if remote.lastName != "create_container" {
		t.Errorf("Expected forwarded tool create_container, got %q", remote.lastName)
	}
	if got := remote.lastArgs["name"]; got != "finance-news" {
		t.Errorf("Expected identical argument mapping, got %v", remote.lastArgs)
	}
}

func TestRouterUnknownTool(t *testing.T) {
	remote := &fakeRemote{}
	router := newTestRouter(t, remote)

	_, err := router.Dispatch(context.Background(), InvocationRequest{Name: "drop_database"})
	var ie *InvocationError
	if !errors.As(err, &ie) {
		t.Fatalf("Expected InvocationError, got %T: %v", err, err)
	}
	if ie.Reason != "unknown tool" {
		t.Errorf("Expected unknown tool reason, got %q", ie.Reason)
	}
	if remote.calls != 0 {
		t.Error("unknown tool must never reach the remote server")
	}
}

func TestRouterValidatesArguments(t *testing.T) {
	remote := &fakeRemote{}
	router := newTestRouter(t, remote)
	ctx := context.Background()

	// missing required parameter
	_, err := router.Dispatch(ctx, InvocationRequest{Name: "create_container", Arguments: map[string]any{}})
	var ie *InvocationError
	if !errors.As(err, &ie) || ie.Reason != "invalid arguments" {
		t.Errorf("Expected invalid arguments error, got %v", err)
	}

	// wrong primitive type
	_, err = router.Dispatch(ctx, InvocationRequest{
		Name:      "upload_blob",
		Arguments: map[string]any{"container": "news", "name": "n1", "content": "x", "overwrite": "yes"},
	})
	if !errors.As(err, &ie) || ie.Reason != "invalid arguments" {
		t.Errorf("Expected type mismatch error, got %v", err)
	}
	if remote.calls != 0 {
		t.Error("invalid arguments must never reach the remote server")
	}
}

func TestRouterUnwrapsKwargs(t *testing.T) {
	remote := &fakeRemote{out: "ok"}
	router := newTestRouter(t, remote)

	// the agent runtime sometimes ships {"kwargs": "{\"name\": ...}"}
	_, err := router.Dispatch(context.Background(), InvocationRequest{
		Name:      "create_container",
		Arguments: map[string]any{"kwargs": `{"name":"finance-news"}`},
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if got := remote.lastArgs["name"]; got != "finance-news" {
		t.Errorf("Expected kwargs unwrapped to name=finance-news, got %v", remote.lastArgs)
	}

	// and occasionally nested one level further
	_, err = router.Dispatch(context.Background(), InvocationRequest{
		Name:      "create_container",
		Arguments: map[string]any{"kwargs": map[string]any{"kwargs": `{"name":"tech-news"}`}},
	})
	if err != nil {
		t.Fatalf("nested dispatch failed: %v", err)
	}
	if got := remote.lastArgs["name"]; got != "tech-news" {
		t.Errorf("Expected nested kwargs unwrapped, got %v", remote.lastArgs)
	}
}

func TestDispatchToolCallsTurnsFailuresIntoOutputs(t *testing.T) {
	remote := &fakeRemote{err: fmt.Errorf("storage account is sulking")}
	router := newTestRouter(t, remote)

	outputs := router.DispatchToolCalls(context.Background(), []InvocationRequest{
		{CallID: "call_1", Name: "list_containers"},
		{CallID: "call_2", Name: "not_a_tool"},
	})
	if len(outputs) != 2 {
		t.Fatalf("Expected 2 outputs, got %d", len(outputs))
	}
	for i, out := range outputs {
		if out.Output == "" {
			t.Errorf("output %d is empty, failures must still produce a tool result", i)
		}
	}
	if outputs[0].CallID != "call_1" || outputs[1].CallID != "call_2" {
		t.Error("outputs must keep their call ids")
	}
}
