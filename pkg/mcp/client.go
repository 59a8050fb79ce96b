package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xpanvictor/newscap/pkg/Logger"
)

// Metrics receives per-method round trip timings. Optional.
type Metrics interface {
	ObserveMCPRequest(method string, elapsed time.Duration)
}

// Config carries the knobs for one server connection.
type Config struct {
	URL            string
	Transport      string // "http" (default) or "sse"
	ConnectTimeout time.Duration
	CallRetries    int           // attempts per tools/call, transport failures only
	RetryBackoff   time.Duration // initial delay, doubled per attempt
	HTTPClient     *http.Client
	Metrics        Metrics
}

func (c Config) withDefaults() Config {
	if c.Transport == "" {
		c.Transport = "http"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	if c.CallRetries <= 0 {
		c.CallRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	return c
}

// Client is a connection to one MCP server. It discovers the tool
// catalog and forwards tool invocations; it never interprets results.
type Client struct {
	cfg       Config
	transport Transport
	logger    *Logger.Logger

	nextID int64

	mu        sync.RWMutex
	connected bool
	catalog   []ToolDescriptor
	byName    map[string]ToolDescriptor
	server    string
}

func NewClient(cfg Config, lg *Logger.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.URL == "" {
		return nil, fmt.Errorf("mcp: server url is required")
	}

	var tr Transport
	switch cfg.Transport {
	case "http":
		tr = newHTTPTransport(cfg.URL, cfg.HTTPClient)
	case "sse":
		tr = newSSETransport(cfg.URL, cfg.HTTPClient, lg)
	default:
		return nil, fmt.Errorf("mcp: unknown transport %q", cfg.Transport)
	}

	return &Client{cfg: cfg, transport: tr, logger: lg, byName: make(map[string]ToolDescriptor)}, nil
}

// Connect performs the protocol handshake. It does not list tools;
// discovery is a separate step so setup failures stay distinguishable.
func (c *Client) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	if sse, ok := c.transport.(*sseTransport); ok {
		if err := sse.open(ctx); err != nil {
			return err
		}
	}

	params := initializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo:      clientInfo{Name: "newscap", Version: "1.0.0"},
	}
	raw, err := c.call(ctx, "initialize", params)
	if err != nil {
		return err
	}
	var init initializeResult
	if err := json.Unmarshal(raw, &init); err != nil {
		return protoErr("initialize", "undecodable initialize result", err)
	}

	if err := c.transport.Notify(ctx, NewNotification("notifications/initialized", nil)); err != nil {
		return err
	}

	c.mu.Lock()
	c.connected = true
	c.server = init.ServerInfo.Name
	c.mu.Unlock()

	c.logger.Infof("connected to MCP server %q (protocol %s)", init.ServerInfo.Name, init.ProtocolVersion)
	return nil
}

// ListTools returns the catalog, fetching it on first use and caching
// it on the connection afterwards.
func (c *Client) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	c.mu.RLock()
	cached := c.catalog
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return c.RefreshTools(ctx)
}

// RefreshTools bypasses the cache and re-queries the server. The cached
// catalog is replaced only on success; discovery has no retry policy.
func (c *Client) RefreshTools(ctx context.Context) ([]ToolDescriptor, error) {
	raw, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var result listToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, protoErr("tools/list", "undecodable tool list", err)
	}
	for _, t := range result.Tools {
		if t.Name == "" {
			return nil, protoErr("tools/list", "catalog entry without a name", nil)
		}
	}

	byName := make(map[string]ToolDescriptor, len(result.Tools))
	for _, t := range result.Tools {
		byName[t.Name] = t
	}

	c.mu.Lock()
	c.catalog = result.Tools
	c.byName = byName
	c.mu.Unlock()

	c.logger.Infof("discovered %d tools from MCP server", len(result.Tools))
	return result.Tools, nil
}

// Describe reports whether the named tool is in the cached catalog.
func (c *Client) Describe(name string) (ToolDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byName[name]
	return d, ok
}

// CallTool forwards one invocation and returns the raw result text.
// The name must exist in the cached catalog; unknown names fail
// without a network round trip. Transport failures are retried with
// exponential backoff, protocol and tool errors are not.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if _, ok := c.Describe(name); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	var lastErr error
	delay := c.cfg.RetryBackoff
	for attempt := 1; attempt <= c.cfg.CallRetries; attempt++ {
		raw, err := c.call(ctx, "tools/call", callToolParams{Name: name, Arguments: args})
		if err == nil {
			return decodeToolResult(name, raw)
		}

		var ce *ConnectionError
		if !errors.As(err, &ce) {
			return "", err
		}
		lastErr = err
		if attempt == c.cfg.CallRetries {
			break
		}
		c.logger.Warnf("tool %s attempt %d/%d failed, retrying in %v: %v", name, attempt, c.cfg.CallRetries, delay, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", connErr("wait", c.cfg.URL, ctx.Err())
		}
		delay *= 2
	}
	return "", lastErr
}

// Close tears the transport down; the cached catalog is discarded.
func (c *Client) Close() error {
	c.mu.Lock()
	c.connected = false
	c.catalog = nil
	c.byName = make(map[string]ToolDescriptor)
	c.mu.Unlock()
	return c.transport.Close()
}

// ServerName reports the handshake-advertised server name, if any.
func (c *Client) ServerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.server
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// call sends one request frame and unwraps the JSON-RPC envelope.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	start := time.Now()
	resp, err := c.transport.RoundTrip(ctx, NewRequest(id, method, params))
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.ObserveMCPRequest(method, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &ProtocolError{Method: method, Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if resp.Result == nil {
		return nil, protoErr(method, "response without result", nil)
	}
	return resp.Result, nil
}

func decodeToolResult(name string, raw json.RawMessage) (string, error) {
	var result callToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", protoErr("tools/call", "undecodable tool result", err)
	}
	text := FlattenContent(result.Content)
	if result.IsError {
		return "", &ToolFailedError{Tool: name, Detail: text}
	}
	return text, nil
}
