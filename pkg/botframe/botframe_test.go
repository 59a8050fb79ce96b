package botframe

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xpanvictor/newscap/pkg/Logger"
)

func incomingActivity() Activity {
	return Activity{
		Type:       ActivityMessage,
		ID:         "act-1",
		ServiceURL: "http://localhost:9999",
		ChannelID:  "emulator",
		From:       ChannelAccount{ID: "user-1", Name: "Sam"},
		Recipient:  ChannelAccount{ID: "bot-1", Name: "newscap"},
		Conversation: ConversationAccount{
			ID: "conv-1",
		},
		Text: "hello",
	}
}

func TestCreateReplySwapsAddresses(t *testing.T) {
	incoming := incomingActivity()
	reply := incoming.CreateReply("hi there")

	if reply.Type != ActivityMessage {
		t.Errorf("Expected message type, got %q", reply.Type)
	}
	if reply.From.ID != "bot-1" {
		t.Errorf("Expected reply from bot, got %q", reply.From.ID)
	}
	if reply.Recipient.ID != "user-1" {
		t.Errorf("Expected reply to user, got %q", reply.Recipient.ID)
	}
	if reply.Conversation.ID != "conv-1" {
		t.Errorf("Expected same conversation, got %q", reply.Conversation.ID)
	}
	if reply.ReplyToID != "act-1" {
		t.Errorf("Expected replyToId act-1, got %q", reply.ReplyToID)
	}
	if reply.Text != "hi there" {
		t.Errorf("Expected reply text, got %q", reply.Text)
	}
}

func TestCreateTraceCarriesValue(t *testing.T) {
	incoming := incomingActivity()
	trace := incoming.CreateTrace("on_turn_error Trace", "TurnError", "https://www.botframework.com/schemas/error", "boom")

	if trace.Type != ActivityTrace {
		t.Errorf("Expected trace type, got %q", trace.Type)
	}
	if trace.Label != "TurnError" {
		t.Errorf("Expected TurnError label, got %q", trace.Label)
	}
	if trace.Value != "boom" {
		t.Errorf("Expected trace value, got %v", trace.Value)
	}
}

func TestConnectorReplyPostsToServiceURL(t *testing.T) {
	var gotPath string
	var gotBody Activity

	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"resp-1"}`))
	}))
	defer service.Close()

	connector := NewConnector(ConnectorConfig{}, Logger.New(true))

	incoming := incomingActivity()
	incoming.ServiceURL = service.URL

	id, err := connector.ReplyTo(context.Background(), incoming, incoming.CreateReply("answer"))
	if err != nil {
		t.Fatalf("ReplyTo failed: %v", err)
	}

	if id != "resp-1" {
		t.Errorf("Expected resource id resp-1, got %q", id)
	}
	if gotPath != "/v3/conversations/conv-1/activities/act-1" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotBody.Text != "answer" {
		t.Errorf("Expected posted text, got %q", gotBody.Text)
	}
}

func TestConnectorSendToConversationPath(t *testing.T) {
	var gotPath string

	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":"resp-2"}`))
	}))
	defer service.Close()

	connector := NewConnector(ConnectorConfig{}, Logger.New(true))

	_, err := connector.SendToConversation(context.Background(), service.URL, "conv-9", Activity{Type: ActivityMessage, Text: "ping"})
	if err != nil {
		t.Fatalf("SendToConversation failed: %v", err)
	}

	if gotPath != "/v3/conversations/conv-9/activities" {
		t.Errorf("Unexpected path %q", gotPath)
	}
}

func TestConnectorAttachesBearerToken(t *testing.T) {
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-abc","token_type":"Bearer","expires_in":3600}`))
	}))
	defer login.Close()

	var gotAuth string
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"resp-3"}`))
	}))
	defer service.Close()

	connector := NewConnector(ConnectorConfig{
		AppID:       "app-1",
		AppPassword: "hunter2",
		TokenURL:    login.URL,
	}, Logger.New(true))

	incoming := incomingActivity()
	incoming.ServiceURL = service.URL

	_, err := connector.ReplyTo(context.Background(), incoming, incoming.CreateReply("secured"))
	if err != nil {
		t.Fatalf("ReplyTo failed: %v", err)
	}

	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Expected bearer token on delivery, got %q", gotAuth)
	}
}

func TestConnectorDeliveryErrorSurfaces(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer service.Close()

	connector := NewConnector(ConnectorConfig{}, Logger.New(true))

	incoming := incomingActivity()
	incoming.ServiceURL = service.URL

	_, err := connector.ReplyTo(context.Background(), incoming, incoming.CreateReply("x"))
	if err == nil {
		t.Fatal("Expected delivery error")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestConnectorRejectsMissingAddress(t *testing.T) {
	connector := NewConnector(ConnectorConfig{}, Logger.New(true))

	_, err := connector.ReplyTo(context.Background(), Activity{}, Activity{Text: "x"})
	if err == nil {
		t.Fatal("Expected error for activity without return address")
	}
}

// jwks test fixture

const testIssuer = "https://login.test.local/issuer"

func newJWKSServer(t *testing.T, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/.well-known/openidconfiguration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"jwks_uri": server.URL + "/keys"})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "test-key",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   "AQAB",
			}},
		})
	})

	server = httptest.NewServer(mux)
	return server
}

func signChannelToken(t *testing.T, priv *rsa.PrivateKey, audience, issuer string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"aud": audience,
		"iss": issuer,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "test-key"

	raw, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return raw
}

func TestValidatorAcceptsSignedToken(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	server := newJWKSServer(t, &priv.PublicKey)
	defer server.Close()

	validator := NewTokenValidator("app-1", server.URL+"/.well-known/openidconfiguration", Logger.New(true))
	validator.Issuers = append(validator.Issuers, testIssuer)

	raw := signChannelToken(t, priv, "app-1", testIssuer)

	if err := validator.Validate(context.Background(), "Bearer "+raw); err != nil {
		t.Errorf("Expected token to validate, got %v", err)
	}
}

func TestValidatorRejectsWrongAudience(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	server := newJWKSServer(t, &priv.PublicKey)
	defer server.Close()

	validator := NewTokenValidator("app-1", server.URL+"/.well-known/openidconfiguration", Logger.New(true))
	validator.Issuers = append(validator.Issuers, testIssuer)

	raw := signChannelToken(t, priv, "some-other-app", testIssuer)

	if err := validator.Validate(context.Background(), "Bearer "+raw); err == nil {
		t.Error("Expected audience rejection")
	}
}

func TestValidatorRejectsUntrustedIssuer(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	server := newJWKSServer(t, &priv.PublicKey)
	defer server.Close()

	validator := NewTokenValidator("app-1", server.URL+"/.well-known/openidconfiguration", Logger.New(true))

	raw := signChannelToken(t, priv, "app-1", "https://evil.example")

	if err := validator.Validate(context.Background(), "Bearer "+raw); err == nil {
		t.Error("Expected issuer rejection")
	}
}

func TestValidatorMissingBearer(t *testing.T) {
	validator := NewTokenValidator("app-1", "http://unused.local", Logger.New(true))

	err := validator.Validate(context.Background(), "")
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Expected ErrNoToken, got %v", err)
	}

	err = validator.Validate(context.Background(), "Basic dXNlcjpwYXNz")
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Expected ErrNoToken for non-bearer scheme, got %v", err)
	}
}
