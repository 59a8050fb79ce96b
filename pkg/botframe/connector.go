package botframe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/xpanvictor/newscap/pkg/Logger"
)

const (
	// DefaultTokenURL is the client-credentials endpoint for the channel service.
	DefaultTokenURL = "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token"
	// TokenScope grants connector access.
	TokenScope = "https://api.botframework.com/.default"
)

// Connector posts activities to the channel service named by an
// activity's serviceUrl.
type Connector interface {
	// ReplyTo answers an inbound activity on its own conversation.
	ReplyTo(ctx context.Context, incoming Activity, reply Activity) (string, error)
	// SendToConversation posts an unsolicited activity.
	SendToConversation(ctx context.Context, serviceURL, conversationID string, activity Activity) (string, error)
}

type ConnectorConfig struct {
	AppID       string
	AppPassword string
	// TokenURL overrides the login endpoint; tests point it at a fake.
	TokenURL string
	// Timeout bounds one delivery. Defaults to 15s.
	Timeout time.Duration
}

type connectorClient struct {
	http   *http.Client
	logger *Logger.Logger
}

// NewConnector builds the reply client. Without credentials it posts
// anonymously, which the emulator accepts.
func NewConnector(cfg ConnectorConfig, logger *Logger.Logger) Connector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	base := &http.Client{Timeout: timeout}
	client := base

	if cfg.AppID != "" && cfg.AppPassword != "" {
		tokenURL := cfg.TokenURL
		if tokenURL == "" {
			tokenURL = DefaultTokenURL
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppPassword,
			TokenURL:     tokenURL,
			Scopes:       []string{TokenScope},
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = cc.Client(ctx)
		client.Timeout = timeout
	}

	return &connectorClient{http: client, logger: logger}
}

// ReplyTo implements Connector.
func (c *connectorClient) ReplyTo(ctx context.Context, incoming Activity, reply Activity) (string, error) {
	if incoming.ServiceURL == "" || incoming.Conversation.ID == "" {
		return "", errors.New("activity has no return address")
	}

	path := "/v3/conversations/" + url.PathEscape(incoming.Conversation.ID) + "/activities"
	if incoming.ID != "" {
		path += "/" + url.PathEscape(incoming.ID)
	}
	return c.post(ctx, incoming.ServiceURL, path, reply)
}

// SendToConversation implements Connector.
func (c *connectorClient) SendToConversation(ctx context.Context, serviceURL, conversationID string, activity Activity) (string, error) {
	if serviceURL == "" || conversationID == "" {
		return "", errors.New("missing service url or conversation id")
	}

	path := "/v3/conversations/" + url.PathEscape(conversationID) + "/activities"
	return c.post(ctx, serviceURL, path, activity)
}

func (c *connectorClient) post(ctx context.Context, serviceURL, path string, activity Activity) (string, error) {
	buf, err := json.Marshal(activity)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(serviceURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("channel delivery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("channel delivery %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var rr ResourceResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		// some channels answer with an empty body
		return "", nil
	}
	return rr.ID, nil
}
