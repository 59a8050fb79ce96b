// Package app wires configuration, clients and services into a running
// bot host.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"gorm.io/gorm"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/internal/domains/conversation"
	"github.com/xpanvictor/newscap/internal/domains/operator"
	"github.com/xpanvictor/newscap/internal/domains/toolcatalog"
	"github.com/xpanvictor/newscap/internal/handlers/chatws"
	"github.com/xpanvictor/newscap/internal/metrics"
	convoRepo "github.com/xpanvictor/newscap/internal/repository/conversation"
	operatorRepo "github.com/xpanvictor/newscap/internal/repository/operator"
	"github.com/xpanvictor/newscap/internal/secrets"
	"github.com/xpanvictor/newscap/internal/server"
	"github.com/xpanvictor/newscap/internal/telemetry"
	"github.com/xpanvictor/newscap/internal/tracelog"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/agents"
	"github.com/xpanvictor/newscap/pkg/agents/azure"
	"github.com/xpanvictor/newscap/pkg/agents/emu"
	"github.com/xpanvictor/newscap/pkg/botframe"
	"github.com/xpanvictor/newscap/pkg/mcp"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

// traceRingSize holds roughly the last few hundred turn traces.
const traceRingSize = 64 * 1024

// App represents the application with all its dependencies
type App struct {
	Config *config.Settings
	Logger *Logger.Logger
	DB     *gorm.DB
	RC     *redis.Client

	Secrets      secrets.Provider
	Catalog      *mcp.Client
	Registry     toolbridge.Registry
	Agents       agents.Service
	Registrar    toolcatalog.RegistrarService
	Store        convoRepo.Store
	Operators    operator.OperatorService
	Host         conversation.HostService
	Traces       tracelog.Ring
	Collector    *metrics.Collector
	Telemetry    *telemetry.Providers
	ChatSessions *chatws.Manager
	Validator    *botframe.TokenValidator
}

// NewApp creates a new application instance with all dependencies
// properly wired. Discovery against the tool server runs here; a dead
// server at startup is fatal.
func NewApp(ctx context.Context, cfg *config.Settings, logger *Logger.Logger, db *gorm.DB, rc *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		RC:     rc,
	}

	if err := app.setupDependencies(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

// setupDependencies initializes all application dependencies
func (a *App) setupDependencies(ctx context.Context) error {
	cfg := a.Config

	tel, err := telemetry.Init(cfg.App.Name, cfg.Telemetry, a.Logger)
	if err != nil {
		return err
	}
	a.Telemetry = tel

	a.Collector = metrics.NewCollector(cfg.App.Name)
	a.Secrets = secrets.New(cfg.Vault, a.Logger)
	a.Traces = tracelog.New(traceRingSize)

	// 1. Conversation state
	store, err := convoRepo.NewStore(cfg.State, a.DB, a.RC, a.Logger)
	if err != nil {
		return err
	}
	a.Store = store

	// 2. Tool server client and discovery pipeline
	catalog, err := mcp.NewClient(mcp.Config{
		URL:            cfg.MCP.URL,
		Transport:      cfg.MCP.Transport,
		ConnectTimeout: cfg.MCP.ConnectTimeout,
		CallRetries:    cfg.MCP.CallRetries,
		RetryBackoff:   cfg.MCP.RetryBackoff,
		Metrics:        a.Collector,
	}, a.Logger)
	if err != nil {
		return err
	}
	if err := catalog.Connect(ctx); err != nil {
		return fmt.Errorf("tool server handshake: %w", err)
	}
	a.Catalog = catalog

	a.Registry = toolbridge.NewRegistry()
	router := toolbridge.NewRouter(a.Registry, catalog, a.Logger, a.Collector)

	// 3. Agent service backend
	svc, err := a.setupAgentService()
	if err != nil {
		return err
	}
	a.Agents = svc

	a.Registrar = toolcatalog.NewRegistrarService(cfg.Agent, catalog, a.Registry, svc, a.Logger, a.Collector)
	if err := a.Registrar.Discover(ctx); err != nil {
		return fmt.Errorf("startup discovery: %w", err)
	}
	a.Registrar.StartPeriodicRefresh(ctx, cfg.MCP.RefreshInterval)

	// 4. Operator accounts
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		a.Logger.Warn("JWT secret not configured, using default (not secure for production)")
	}
	tokenTTL := cfg.Auth.TokenTTL
	if tokenTTL == 0 {
		tokenTTL = 15 * time.Minute
	}
	var opRepo operator.OperatorRepository
	if a.DB != nil {
		opRepo = operatorRepo.NewGormOperatorRepo(a.DB)
	} else {
		opRepo = operatorRepo.NewMemoryOperatorRepo()
	}
	a.Operators = operator.NewOperatorService(opRepo, a.Logger, jwtSecret, tokenTTL)

	// 5. Channel plumbing
	appPassword := ""
	if cfg.Bot.AppPasswordSecret != "" {
		appPassword, err = a.Secrets.Get(ctx, cfg.Bot.AppPasswordSecret)
		if err != nil {
			a.Logger.Warnf("bot password unavailable, connector posts anonymously: %v", err)
		}
	}
	if cfg.Bot.AppID != "" {
		a.Validator = botframe.NewTokenValidator(cfg.Bot.AppID, cfg.Bot.OpenIDMetadataURL, a.Logger)
	}
	connector := botframe.NewConnector(botframe.ConnectorConfig{
		AppID:       cfg.Bot.AppID,
		AppPassword: appPassword,
	}, a.Logger)

	a.ChatSessions = chatws.NewManager(a.Logger, a.Collector)
	relay := chatws.NewRelay(a.ChatSessions, connector)

	// 6. Conversation host
	a.Host = conversation.NewHostService(cfg.Agent, cfg.Bot, a.Store, svc, router, a.Registrar, relay, a.Traces, a.Logger)

	return nil
}

// setupAgentService picks the hosted service or the local emulation.
func (a *App) setupAgentService() (agents.Service, error) {
	switch a.Config.Agent.Backend {
	case "azure":
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("agent service credential: %w", err)
		}
		return azure.New(azure.Config{
			Endpoint:   a.Config.Agent.Endpoint,
			APIVersion: a.Config.Agent.APIVersion,
		}, azure.NewAADTokenProvider(cred, ""), a.Logger)
	case "emu":
		factory := NewLLMRouterFactory(a.Config.LLM, a.Logger)
		mux, err := factory.CreateRouter()
		if err != nil {
			return nil, err
		}
		return emu.New(mux, a.Logger), nil
	}
	return nil, fmt.Errorf("unknown agent backend %q", a.Config.Agent.Backend)
}

// ServerDependencies bundles the wired services for the HTTP surface.
func (a *App) ServerDependencies() server.Dependencies {
	return server.Dependencies{
		Settings:     a.Config,
		Logger:       a.Logger,
		Host:         a.Host,
		Validator:    a.Validator,
		Operators:    a.Operators,
		Registrar:    a.Registrar,
		Registry:     a.Registry,
		Store:        a.Store,
		Traces:       a.Traces,
		Catalog:      a.Catalog,
		Collector:    a.Collector,
		ChatSessions: a.ChatSessions,
	}
}

// Shutdown flushes the trace ring to the log, closes the tool server
// connection and stops telemetry export.
func (a *App) Shutdown(ctx context.Context) {
	a.ChatSessions.Close()

	ch := make(chan tracelog.TurnTrace, a.Traces.Capacity()/4)
	if err := a.Traces.Drain(ch); err != nil {
		a.Logger.Warnf("trace drain incomplete: %v", err)
	}
	for trace := range ch {
		a.Logger.Debugf("trace %s conv=%s stage=%s: %s",
			trace.When.Format(time.RFC3339), trace.ConversationID, trace.Stage, trace.Detail)
	}

	if err := a.Catalog.Close(); err != nil {
		a.Logger.Warnf("tool server close: %v", err)
	}
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		a.Logger.Warnf("telemetry shutdown: %v", err)
	}
}
