package mcp

import (
	"encoding/json"
)

// ProtocolVersion is the MCP revision this client speaks.
const ProtocolVersion = "2025-03-26"

// Standard JSON-RPC error codes.
const (
	ErrorCodeParseError     = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternalError  = -32603
)

// Message is a JSON-RPC 2.0 frame. Requests carry Method+Params,
// responses carry Result or Error, notifications carry no ID.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  any             `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func NewRequest(id int64, method string, params any) *Message {
	return &Message{JSONRPC: "2.0", ID: id, Method: method, Params: params}
}

func NewNotification(method string, params any) *Message {
	return &Message{JSONRPC: "2.0", Method: method, Params: params}
}

// Schema is the JSON-Schema subset MCP servers advertise for tool inputs.
// Nested object properties recurse through the same type.
type Schema struct {
	Type        string            `json:"type,omitempty"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
	Items       *Schema           `json:"items,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
}

// ToolDescriptor is one entry of the remote tool catalog. Read-only to
// this system: it is whatever the server advertised.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema Schema `json:"inputSchema"`
}

// RequiredParams returns the declared required property names.
func (t ToolDescriptor) RequiredParams() []string {
	return t.InputSchema.Required
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      clientInfo     `json:"clientInfo"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string     `json:"protocolVersion"`
	ServerInfo      serverInfo `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type listToolsResult struct {
	Tools      []ToolDescriptor `json:"tools"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ContentBlock is one piece of a tool result. Only text blocks are
// meaningful to this bridge; other types pass through as their JSON.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type callToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// FlattenContent joins the text blocks of a tool result into the raw
// payload handed back to the agent. JSON text passes through untouched.
func FlattenContent(blocks []ContentBlock) string {
	if len(blocks) == 1 {
		return blocks[0].Text
	}
	var out string
	for i, b := range blocks {
		if i > 0 {
			out += "\n"
		}
		out += b.Text
	}
	return out
}
