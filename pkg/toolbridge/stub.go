// Package toolbridge turns remote MCP tool descriptors into function
// stubs the agent service can register, and routes agent-issued
// invocations back to the remote executor.
package toolbridge

import (
	"encoding/json"
)

// StubProperty is one parameter of a synthesized function signature.
// Nested objects and array items recurse through the same type.
type StubProperty struct {
	Type        string                  `json:"type"`
	Description string                  `json:"description,omitempty"`
	Enum        []string                `json:"enum,omitempty"`
	Items       *StubProperty           `json:"items,omitempty"`
	Properties  map[string]StubProperty `json:"properties,omitempty"`
	Required    []string                `json:"required,omitempty"`
}

// StubParameters is the parameters object of a function stub, always of
// type "object" per the agent service's calling convention.
type StubParameters struct {
	Type       string                  `json:"type"`
	Properties map[string]StubProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// FunctionStub is the local callable signature derived from one remote
// ToolDescriptor, shaped for agent registration. Derivation is
// deterministic: the same descriptor always yields the same stub.
type FunctionStub struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  StubParameters `json:"parameters"`
}

// Canonical returns the stub's canonical JSON encoding. Map keys are
// emitted sorted, so an unchanged descriptor re-encodes byte-identical.
func (s FunctionStub) Canonical() []byte {
	raw, err := json.Marshal(s)
	if err != nil {
		// a stub is built from decoded JSON; re-encoding cannot fail
		panic("toolbridge: unencodable stub: " + err.Error())
	}
	return raw
}

// CanonicalSet encodes a whole stub set in registration order.
func CanonicalSet(stubs []FunctionStub) []byte {
	raw, err := json.Marshal(stubs)
	if err != nil {
		panic("toolbridge: unencodable stub set: " + err.Error())
	}
	return raw
}
