package mcp

import (
	"errors"
	"fmt"
)

// ConnectionError means the remote tool server could not be reached or
// the transport broke mid-exchange.
type ConnectionError struct {
	URL string
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mcp: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError means the server answered with something that is not a
// valid response: broken JSON-RPC framing, a missing result, a schema
// that does not decode, or an RPC-level error.
type ProtocolError struct {
	Method  string
	Code    int
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("mcp: %s failed: rpc %d %s", e.Method, e.Code, e.Message)
	}
	return fmt.Sprintf("mcp: %s: %s", e.Method, e.Message)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ToolFailedError carries a tool-execution failure reported by the
// server (isError result). Distinct from protocol breakage: the call
// itself was well-formed.
type ToolFailedError struct {
	Tool   string
	Detail string
}

func (e *ToolFailedError) Error() string {
	return fmt.Sprintf("mcp: tool %s failed: %s", e.Tool, e.Detail)
}

// ErrUnknownTool is returned when a call names a tool absent from the
// discovered catalog; the call never reaches the network.
var ErrUnknownTool = errors.New("mcp: tool not present in catalog")

func connErr(op, url string, err error) *ConnectionError {
	return &ConnectionError{URL: url, Op: op, Err: err}
}

func protoErr(method, msg string, err error) *ProtocolError {
	return &ProtocolError{Method: method, Message: msg, Err: err}
}
