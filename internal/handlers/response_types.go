package handlers

import (
	"time"

	"github.com/xpanvictor/newscap/internal/domains/operator"
	"github.com/xpanvictor/newscap/internal/tracelog"
	"github.com/xpanvictor/newscap/internal/types"
	"github.com/xpanvictor/newscap/pkg/toolbridge"
)

// Response wrapper types for Swagger documentation

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// RegisterResponse represents the response for operator registration
type RegisterResponse struct {
	Message  string                    `json:"message" example:"Operator registered successfully"`
	Operator operator.OperatorResponse `json:"operator"`
}

// LoginResponse represents the response for operator login
type LoginResponse struct {
	Message  string                    `json:"message" example:"Login successful"`
	Operator operator.OperatorResponse `json:"operator"`
	Tokens   operator.AuthTokens       `json:"tokens"`
}

// RefreshTokenResponse represents the response for token refresh
type RefreshTokenResponse struct {
	Message string              `json:"message" example:"Token refreshed successfully"`
	Tokens  operator.AuthTokens `json:"tokens"`
}

// ProfileResponse represents the response for getting an operator profile
type ProfileResponse struct {
	Operator operator.OperatorResponse `json:"operator"`
}

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Total  int64 `json:"total" example:"150"`
	Offset int   `json:"offset" example:"0"`
	Limit  int   `json:"limit" example:"20"`
}

// ListOperatorsResponse represents the response for listing operators
type ListOperatorsResponse struct {
	Operators  []operator.OperatorResponse `json:"operators"`
	Pagination PaginationInfo              `json:"pagination"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required" example:"jwt-refresh-token-here"`
}

// Admin surface

// ToolListResponse represents the currently registered tool stubs
type ToolListResponse struct {
	Tools       []toolbridge.FunctionStub `json:"tools"`
	Count       int                       `json:"count" example:"4"`
	AgentID     string                    `json:"agentId,omitempty" example:"asst_abc123"`
	LastRefresh time.Time                 `json:"lastRefresh"`
}

// RefreshToolsResponse represents the outcome of a catalog refresh
type RefreshToolsResponse struct {
	Message     string    `json:"message" example:"Tool catalog refreshed"`
	Count       int       `json:"count" example:"4"`
	AgentID     string    `json:"agentId" example:"asst_abc123"`
	LastRefresh time.Time `json:"lastRefresh"`
}

// TraceListResponse represents recent turn traces
type TraceListResponse struct {
	Traces []tracelog.TurnTrace `json:"traces"`
	Count  int                  `json:"count" example:"10"`
}

// TranscriptResponse represents a stored conversation transcript window
type TranscriptResponse struct {
	ConversationID string                  `json:"conversationId" example:"conv-1"`
	Entries        []types.TranscriptEntry `json:"entries"`
}

// ConversationListResponse represents the known conversation ids
type ConversationListResponse struct {
	Conversations []string `json:"conversations"`
	Count         int      `json:"count" example:"3"`
}
