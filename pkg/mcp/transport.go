package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/xpanvictor/newscap/pkg/Logger"
)

// Transport carries one JSON-RPC exchange to the server. The client owns
// request ids and retry policy; transports only move frames.
type Transport interface {
	RoundTrip(ctx context.Context, msg *Message) (*Message, error)
	Notify(ctx context.Context, msg *Message) error
	Close() error
}

const headerSessionID = "Mcp-Session-Id"

// httpTransport speaks the streamable-HTTP flavor: each request is a
// POST, the response arrives as JSON (or as a short event stream that
// carries the response frame).
type httpTransport struct {
	url     string
	client  *http.Client
	mu      sync.Mutex
	session string
}

func newHTTPTransport(rawURL string, client *http.Client) *httpTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpTransport{url: rawURL, client: client}
}

func (t *httpTransport) RoundTrip(ctx context.Context, msg *Message) (*Message, error) {
	resp, err := t.post(ctx, msg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, protoErr(msg.Method, fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if sid := resp.Header.Get(headerSessionID); sid != "" {
		t.mu.Lock()
		t.session = sid
		t.mu.Unlock()
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return readResponseEvent(resp.Body, msg)
	}

	var out Message
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, protoErr(msg.Method, "undecodable response frame", err)
	}
	return &out, nil
}

func (t *httpTransport) Notify(ctx context.Context, msg *Message) error {
	resp, err := t.post(ctx, msg)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}

func (t *httpTransport) post(ctx context.Context, msg *Message) (*http.Response, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, protoErr(msg.Method, "marshal request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return nil, connErr("post", t.url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	t.mu.Lock()
	if t.session != "" {
		req.Header.Set(headerSessionID, t.session)
	}
	t.mu.Unlock()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, connErr("post", t.url, err)
	}
	return resp, nil
}

func (t *httpTransport) Close() error { return nil }

// readResponseEvent scans an event stream until the frame answering msg
// shows up.
func readResponseEvent(r io.Reader, msg *Message) (*Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		var out Message
		if err := json.Unmarshal([]byte(data), &out); err != nil {
			return nil, protoErr(msg.Method, "undecodable event frame", err)
		}
		if sameID(out.ID, msg.ID) {
			return &out, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, connErr("read", "", err)
	}
	return nil, protoErr(msg.Method, "stream ended without a response", nil)
}

// sseTransport speaks the older SSE flavor: a long-lived GET stream
// announces a session endpoint, requests are POSTed there and answered
// on the stream. Responses are matched to waiters by request id.
type sseTransport struct {
	baseURL  string
	client   *http.Client
	logger   *Logger.Logger
	endpoint string

	pending   map[int64]chan *Message
	pendingMu sync.Mutex

	cancel context.CancelFunc
	ready  chan struct{}
	done   chan struct{}
}

func newSSETransport(rawURL string, client *http.Client, lg *Logger.Logger) *sseTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &sseTransport{
		baseURL: rawURL,
		client:  client,
		logger:  lg,
		pending: make(map[int64]chan *Message),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// open dials the event stream and waits for the endpoint announcement.
func (t *sseTransport) open(ctx context.Context) error {
	req, err := http.NewRequest(http.MethodGet, t.baseURL, nil)
	if err != nil {
		return connErr("dial", t.baseURL, err)
	}
	streamCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	req = req.WithContext(streamCtx)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		cancel()
		return connErr("dial", t.baseURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return connErr("dial", t.baseURL, fmt.Errorf("http %d", resp.StatusCode))
	}

	go t.readLoop(resp.Body)

	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		t.Close()
		return connErr("dial", t.baseURL, ctx.Err())
	}
}

func (t *sseTransport) readLoop(body io.ReadCloser) {
	defer close(t.done)
	defer body.Close()

	var event string
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			t.handleEvent(event, data)
		case line == "":
			event = ""
		}
	}
	t.dropPending()
}

func (t *sseTransport) handleEvent(event, data string) {
	switch event {
	case "endpoint":
		if t.endpoint == "" {
			t.endpoint = t.resolveEndpoint(data)
			close(t.ready)
		}
	case "message", "":
		var msg Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			if t.logger != nil {
				t.logger.Warnf("mcp sse: dropping undecodable frame: %v", err)
			}
			return
		}
		id, ok := normalizeID(msg.ID)
		if !ok {
			return // server notification, nothing waits on it
		}
		t.pendingMu.Lock()
		ch := t.pending[id]
		delete(t.pending, id)
		t.pendingMu.Unlock()
		if ch != nil {
			ch <- &msg
		}
	}
}

func (t *sseTransport) resolveEndpoint(data string) string {
	base, err := url.Parse(t.baseURL)
	if err != nil {
		return data
	}
	ref, err := url.Parse(data)
	if err != nil {
		return data
	}
	return base.ResolveReference(ref).String()
}

func (t *sseTransport) RoundTrip(ctx context.Context, msg *Message) (*Message, error) {
	id, ok := normalizeID(msg.ID)
	if !ok {
		return nil, protoErr(msg.Method, "request without id", nil)
	}

	ch := make(chan *Message, 1)
	t.pendingMu.Lock()
	t.pending[id] = ch
	t.pendingMu.Unlock()
	defer func() {
		t.pendingMu.Lock()
		delete(t.pending, id)
		t.pendingMu.Unlock()
	}()

	if err := t.Notify(ctx, msg); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		if resp == nil {
			return nil, connErr("read", t.baseURL, io.ErrUnexpectedEOF)
		}
		return resp, nil
	case <-t.done:
		return nil, connErr("read", t.baseURL, io.ErrUnexpectedEOF)
	case <-ctx.Done():
		return nil, connErr("wait", t.baseURL, ctx.Err())
	}
}

func (t *sseTransport) Notify(ctx context.Context, msg *Message) error {
	if t.endpoint == "" {
		return connErr("post", t.baseURL, fmt.Errorf("no session endpoint announced"))
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return protoErr(msg.Method, "marshal request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return connErr("post", t.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return connErr("post", t.endpoint, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return connErr("post", t.endpoint, fmt.Errorf("http %d", resp.StatusCode))
	}
	return nil
}

func (t *sseTransport) Close() error {
	if t.cancel != nil {
		t.cancel()
	}
	t.dropPending()
	return nil
}

// dropPending closes every waiter; RoundTrip reports the broken stream.
func (t *sseTransport) dropPending() {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	for id, ch := range t.pending {
		close(ch)
		delete(t.pending, id)
	}
}

func normalizeID(id any) (int64, bool) {
	switch v := id.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

func sameID(a, b any) bool {
	ai, aok := normalizeID(a)
	bi, bok := normalizeID(b)
	return aok && bok && ai == bi
}
