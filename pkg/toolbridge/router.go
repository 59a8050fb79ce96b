package toolbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/xpanvictor/newscap/pkg/Logger"
)

// InvocationRequest is one agent-issued function call. Transient: it
// lives for the duration of the round trip and is never persisted.
type InvocationRequest struct {
	CallID    string
	Name      string
	Arguments map[string]any
}

// ToolOutput is what goes back to the agent run, failed or not.
type ToolOutput struct {
	CallID string `json:"tool_call_id"`
	Output string `json:"output"`
}

// InvocationError covers everything that can go wrong routing one
// call: a name missing from the catalog, arguments that do not fit the
// stub, or a remote failure.
type InvocationError struct {
	Tool   string
	Reason string
	Err    error
}

func (e *InvocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invocation of %s failed: %s: %v", e.Tool, e.Reason, e.Err)
	}
	return fmt.Sprintf("invocation of %s failed: %s", e.Tool, e.Reason)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// RemoteCaller forwards a validated call to the remote executor.
// Satisfied by *mcp.Client.
type RemoteCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// Metrics is the slice of instrumentation the router feeds. Optional.
type Metrics interface {
	ObserveInvocation(tool, outcome string, elapsed time.Duration)
}

// Router relays agent-issued invocations to the remote tool server.
// One call in, one result out; no batching, no fan-out.
type Router struct {
	registry Registry
	remote   RemoteCaller
	logger   *Logger.Logger
	metrics  Metrics
}

func NewRouter(reg Registry, remote RemoteCaller, lg *Logger.Logger, m Metrics) *Router {
	return &Router{registry: reg, remote: remote, logger: lg, metrics: m}
}

// Dispatch routes one invocation and returns the raw remote result
// unmodified. Unknown names and bad arguments fail before any network
// traffic happens.
func (r *Router) Dispatch(ctx context.Context, req InvocationRequest) (string, error) {
	start := time.Now()
	out, err := r.dispatch(ctx, req)
	if r.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		r.metrics.ObserveInvocation(req.Name, outcome, time.Since(start))
	}
	return out, err
}

func (r *Router) dispatch(ctx context.Context, req InvocationRequest) (string, error) {
	stub, ok := r.registry.Get(req.Name)
	if !ok {
		return "", &InvocationError{Tool: req.Name, Reason: "unknown tool"}
	}

	args := UnwrapArguments(req.Arguments)
	if err := validateArguments(stub, args); err != nil {
		return "", &InvocationError{Tool: req.Name, Reason: "invalid arguments", Err: err}
	}

	out, err := r.remote.CallTool(ctx, req.Name, args)
	if err != nil {
		return "", &InvocationError{Tool: req.Name, Reason: "remote failure", Err: err}
	}
	return out, nil
}

// DispatchToolCalls resolves a batch of required tool calls
// sequentially. A failed invocation becomes a failed tool output so
// the agent can tell the user instead of the run dying.
func (r *Router) DispatchToolCalls(ctx context.Context, reqs []InvocationRequest) []ToolOutput {
	outputs := make([]ToolOutput, 0, len(reqs))
	for _, req := range reqs {
		out, err := r.Dispatch(ctx, req)
		if err != nil {
			r.logger.Errorf("tool call %s (%s) failed: %v", req.Name, req.CallID, err)
			out = failedOutput(err)
		}
		outputs = append(outputs, ToolOutput{CallID: req.CallID, Output: out})
	}
	return outputs
}

func failedOutput(err error) string {
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(raw)
}

// UnwrapArguments undoes the agent runtime's habit of wrapping the real
// arguments in a kwargs envelope, sometimes as a JSON string and
// sometimes nested another level down.
func UnwrapArguments(args map[string]any) map[string]any {
	for i := 0; i < 2; i++ {
		if args == nil || len(args) != 1 {
			return args
		}
		inner, ok := args["kwargs"]
		if !ok {
			return args
		}
		switch v := inner.(type) {
		case string:
			var decoded map[string]any
			if err := json.Unmarshal([]byte(v), &decoded); err != nil {
				return args
			}
			args = decoded
		case map[string]any:
			args = v
		default:
			return args
		}
	}
	return args
}

// validateArguments enforces the stub's declared signature: required
// parameters present, provided parameters of the declared primitive
// type. Parameters the stub does not declare pass through untouched.
func validateArguments(stub FunctionStub, args map[string]any) error {
	for _, name := range stub.Parameters.Required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required parameter %q", name)
		}
	}
	for name, value := range args {
		prop, declared := stub.Parameters.Properties[name]
		if !declared {
			continue
		}
		if err := checkType(name, prop.Type, value); err != nil {
			return err
		}
	}
	return nil
}

func checkType(name, want string, value any) error {
	if value == nil {
		return nil
	}
	ok := true
	switch want {
	case "string":
		_, ok = value.(string)
	case "boolean":
		_, ok = value.(bool)
	case "number":
		ok = isJSONNumber(value)
	case "integer":
		ok = isJSONInteger(value)
	case "array":
		_, ok = value.([]any)
	case "object":
		_, ok = value.(map[string]any)
	}
	if !ok {
		return fmt.Errorf("parameter %q is not of type %s", name, want)
	}
	return nil
}

func isJSONNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

func isJSONInteger(value any) bool {
	switch v := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		return v == math.Trunc(v)
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}
