package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/newscap/internal/domains/toolcatalog"
	convoRepo "github.com/xpanvictor/newscap/internal/repository/conversation"
	"github.com/xpanvictor/newscap/internal/tracelog"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
	"github.com/xpanvictor/newscap/pkg/utils"
)

// AdminHandler exposes the operator-facing management API: catalog
// refresh, registered stubs, turn traces and stored transcripts.
type AdminHandler struct {
	registrar toolcatalog.RegistrarService
	registry  toolbridge.Registry
	store     convoRepo.Store
	traces    tracelog.Ring
	logger    *Logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	registrar toolcatalog.RegistrarService,
	registry toolbridge.Registry,
	store convoRepo.Store,
	traces tracelog.Ring,
	logger *Logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		registrar: registrar,
		registry:  registry,
		store:     store,
		traces:    traces,
		logger:    logger,
	}
}

// ListTools handles listing the registered tool stubs
// @Summary List registered tools
// @Description List the tool stubs currently registered on the agent
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ToolListResponse "Registered tool stubs"
// @Failure 401 {object} ErrorResponse "Operator not authenticated"
// @Router /admin/tools [get]
func (h *AdminHandler) ListTools(c *gin.Context) {
	stubs := h.registry.List()
	c.JSON(http.StatusOK, ToolListResponse{
		Tools:       stubs,
		Count:       len(stubs),
		AgentID:     h.registrar.AgentID(),
		LastRefresh: h.registrar.LastRefresh(),
	})
}

// RefreshTools handles re-running tool discovery
// @Summary Refresh the tool catalog
// @Description Re-run tool discovery against the remote server and update the agent
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RefreshToolsResponse "Catalog refreshed"
// @Failure 401 {object} ErrorResponse "Operator not authenticated"
// @Failure 502 {object} ErrorResponse "Refresh failed, previous tools stay active"
// @Router /admin/tools/refresh [post]
func (h *AdminHandler) RefreshTools(c *gin.Context) {
	if err := h.registrar.Refresh(c.Request.Context()); err != nil {
		h.logger.Errorf("catalog refresh failed: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Tool catalog refresh failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, RefreshToolsResponse{
		Message:     "Tool catalog refreshed",
		Count:       h.registry.Len(),
		AgentID:     h.registrar.AgentID(),
		LastRefresh: h.registrar.LastRefresh(),
	})
}

// Traces handles listing recent turn traces
// @Summary Recent turn traces
// @Description List the newest turn traces from the in-memory ring
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of traces to return" default(20)
// @Success 200 {object} TraceListResponse "Recent traces, newest first"
// @Failure 401 {object} ErrorResponse "Operator not authenticated"
// @Router /admin/trace [get]
func (h *AdminHandler) Traces(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	traces := h.traces.Recent(limit)
	c.JSON(http.StatusOK, TraceListResponse{
		Traces: traces,
		Count:  len(traces),
	})
}

// Conversations handles listing known conversation ids
// @Summary List conversations
// @Description List every conversation id with stored state
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ConversationListResponse "Known conversation ids"
// @Failure 401 {object} ErrorResponse "Operator not authenticated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/conversations [get]
func (h *AdminHandler) Conversations(c *gin.Context) {
	ids, err := h.store.Conversations(c.Request.Context())
	if err != nil {
		h.logger.Errorf("conversation listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ConversationListResponse{
		Conversations: ids,
		Count:         len(ids),
	})
}

// Transcript handles reading a stored conversation transcript
// @Summary Conversation transcript
// @Description Read a window of the stored transcript for one conversation
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversationID path string true "Conversation ID"
// @Param from query int false "Window start (oldest index, negative counts from the end)"
// @Param to query int false "Window end"
// @Success 200 {object} TranscriptResponse "Transcript entries"
// @Failure 400 {object} ErrorResponse "Invalid window bounds"
// @Failure 401 {object} ErrorResponse "Operator not authenticated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/transcript/{conversationID} [get]
func (h *AdminHandler) Transcript(c *gin.Context) {
	conversationID := c.Param("conversationID")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Conversation ID is required"})
		return
	}

	var window utils.Range[int64]
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := strconv.ParseInt(fromStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid from bound", Details: err.Error()})
			return
		}
		window.Min = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := strconv.ParseInt(toStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid to bound", Details: err.Error()})
			return
		}
		window.Max = &to
	}

	entries, err := h.store.Transcript(c.Request.Context(), conversationID, window)
	if err != nil {
		h.logger.Errorf("transcript read failed for %s: %v", conversationID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, TranscriptResponse{
		ConversationID: conversationID,
		Entries:        entries,
	})
}

// DeleteAgent handles deleting the hosted agent
// @Summary Delete the hosted agent
// @Description Delete the registered agent from the hosted service
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse "Agent deleted"
// @Failure 401 {object} ErrorResponse "Operator not authenticated"
// @Failure 404 {object} ErrorResponse "No agent registered"
// @Failure 502 {object} ErrorResponse "Deletion failed"
// @Router /admin/agent [delete]
func (h *AdminHandler) DeleteAgent(c *gin.Context) {
	if err := h.registrar.DeleteAgent(c.Request.Context()); err != nil {
		if errors.Is(err, toolcatalog.ErrNoAgent) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No agent registered"})
			return
		}
		h.logger.Errorf("agent deletion failed: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Agent deletion failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Agent deleted"})
}

// RegisterAdminRoutes registers the admin group behind operator auth
func (h *AdminHandler) RegisterAdminRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	admin := r.Group("/admin")
	admin.Use(auth)
	{
		admin.GET("/tools", h.ListTools)
		admin.POST("/tools/refresh", h.RefreshTools)
		admin.GET("/trace", h.Traces)
		admin.GET("/conversations", h.Conversations)
		admin.GET("/transcript/:conversationID", h.Transcript)
		admin.DELETE("/agent", h.DeleteAgent)
	}
}
