package toolcatalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/internal/constants/prompts"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/agents"
	"github.com/xpanvictor/newscap/pkg/mcp"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

// ErrNoAgent is returned by DeleteAgent when neither discovery nor
// config produced an agent id.
var ErrNoAgent = errors.New("no agent id to delete")

// RegistrationError marks a rejection from the hosted agent service
// while pushing the tool set.
type RegistrationError struct {
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("agent registration: %v", e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// Catalog is the slice of the MCP client the registrar consumes.
type Catalog interface {
	ListTools(ctx context.Context) ([]mcp.ToolDescriptor, error)
	RefreshTools(ctx context.Context) ([]mcp.ToolDescriptor, error)
}

// Metrics receives discovery outcomes. Optional.
type Metrics interface {
	ObserveCatalogRefresh(outcome string, tools int)
}

// RegistrarService keeps the agent's tool list in sync with the remote
// catalog: discover stubs, register them on the agent, swap the local
// registry.
type RegistrarService interface {
	// Discover runs the full pipeline once. Callers treat a failure at
	// startup as fatal; the admin surface reports it instead.
	Discover(ctx context.Context) error
	// Refresh re-runs Discover bypassing the catalog cache. On failure
	// the previous stub set stays active.
	Refresh(ctx context.Context) error
	StartPeriodicRefresh(ctx context.Context, interval time.Duration)
	DeleteAgent(ctx context.Context) error
	AgentID() string
	LastRefresh() time.Time
}

type registrarService struct {
	cfg      config.AgentConfig
	catalog  Catalog
	registry toolbridge.Registry
	agents   agents.Service
	logger   *Logger.Logger
	metrics  Metrics

	// one discovery at a time; ticker and admin refresh can overlap
	opMu sync.Mutex

	stateMu     sync.RWMutex
	agentID     string
	lastRefresh time.Time
}

// refreshTimeout bounds one periodic discovery run.
const refreshTimeout = 30 * time.Second

// Discover implements RegistrarService
func (s *registrarService) Discover(ctx context.Context) error {
	return s.discover(ctx, false)
}

// Refresh implements RegistrarService
func (s *registrarService) Refresh(ctx context.Context) error {
	return s.discover(ctx, true)
}

func (s *registrarService) discover(ctx context.Context, refresh bool) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.runDiscovery(ctx, refresh)
	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		// Len reflects the serving set; a failed refresh keeps the old one
		s.metrics.ObserveCatalogRefresh(outcome, s.registry.Len())
	}
	return err
}

func (s *registrarService) runDiscovery(ctx context.Context, refresh bool) error {
	var (
		descs []mcp.ToolDescriptor
		err   error
	)
	if refresh {
		descs, err = s.catalog.RefreshTools(ctx)
	} else {
		descs, err = s.catalog.ListTools(ctx)
	}
	if err != nil {
		return fmt.Errorf("catalog listing: %w", err)
	}

	stubs, err := toolbridge.SynthesizeAll(descs)
	if err != nil {
		return err
	}

	tools := agents.FunctionTools(stubs)
	if s.cfg.BingConnectionID != "" {
		tools = append(tools, agents.ToolDefinition{
			Type: "bing_grounding",
			BingGrounding: &agents.BingGrounding{
				Connections: []agents.ToolConnection{{ConnectionID: s.cfg.BingConnectionID}},
			},
		})
	}

	spec := agents.AgentSpec{
		ID:           s.currentAgentID(),
		Name:         s.cfg.AgentName,
		Model:        s.cfg.Model,
		Instructions: prompts.AGENT_PROMPT.Pick(s.cfg.InstructionsVersion).Content,
		Description:  prompts.AGENT_DESCRIPTION,
		Tools:        tools,
	}

	agent, err := s.agents.EnsureAgent(ctx, spec)
	if err != nil {
		return &RegistrationError{Err: err}
	}

	// Swap only after the service accepted the set so a failed refresh
	// keeps the previous stubs serving
	s.registry.ReplaceAll(stubs)

	s.stateMu.Lock()
	s.agentID = agent.ID
	s.lastRefresh = time.Now()
	s.stateMu.Unlock()

	s.logger.Infof("registered %d catalog tools on agent %s (%s)", len(stubs), agent.ID, agent.Name)
	return nil
}

// StartPeriodicRefresh implements RegistrarService
func (s *registrarService) StartPeriodicRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Infof("catalog refresh scheduled every %s", interval)

		// Startup already ran Discover, the first tick waits a full interval
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("catalog refresh stopping")
				return
			case <-ticker.C:
				refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
				if err := s.Refresh(refreshCtx); err != nil {
					s.logger.Errorf("catalog refresh failed, keeping previous stubs: %v", err)
				}
				cancel()
			}
		}
	}()
}

// DeleteAgent implements RegistrarService
func (s *registrarService) DeleteAgent(ctx context.Context) error {
	id := s.currentAgentID()
	if id == "" {
		return ErrNoAgent
	}

	if err := s.agents.DeleteAgent(ctx, id); err != nil {
		return err
	}

	s.stateMu.Lock()
	if s.agentID == id {
		s.agentID = ""
	}
	s.stateMu.Unlock()

	s.logger.Infof("deleted agent %s", id)
	return nil
}

// AgentID implements RegistrarService
func (s *registrarService) AgentID() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.agentID
}

// LastRefresh implements RegistrarService
func (s *registrarService) LastRefresh() time.Time {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.lastRefresh
}

func (s *registrarService) currentAgentID() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.agentID != "" {
		return s.agentID
	}
	return s.cfg.AgentID
}

// NewRegistrarService creates a new catalog registrar. metrics may be nil.
func NewRegistrarService(cfg config.AgentConfig, catalog Catalog, registry toolbridge.Registry, svc agents.Service, logger *Logger.Logger, metrics Metrics) RegistrarService {
	return &registrarService{
		cfg:      cfg,
		catalog:  catalog,
		registry: registry,
		agents:   svc,
		logger:   logger,
		metrics:  metrics,
	}
}
