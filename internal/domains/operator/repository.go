package operator

import (
	"time"

	"github.com/google/uuid"
)

// Operator represents a human operator of the bot deployment (pure
// domain model). Operators sign in to reach the admin API.
// @Description Operator account information
type Operator struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DisplayName string    `json:"displayName" example:"Jane Ops"`
	Email       string    `json:"email" example:"jane@example.com"`
	Password    string    `json:"-"` // Never expose in JSON
	CreatedAt   time.Time `json:"createdAt" example:"2023-01-01T12:00:00Z"`
	UpdatedAt   time.Time `json:"updatedAt" example:"2023-01-01T12:00:00Z"`
}

// CreateOperatorRequest represents the data needed to create an operator
// @Description Request body for operator registration
type CreateOperatorRequest struct {
	DisplayName string `json:"displayName" binding:"required,min=2,max=100" example:"Jane Ops"`
	Email       string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password    string `json:"password" binding:"required,min=8" example:"securePassword123"`
}

// LoginRequest represents login credentials
// @Description Request body for operator login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"securePassword123"`
}

// OperatorResponse represents an operator without sensitive information
// @Description Operator information returned in API responses
type OperatorResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DisplayName string    `json:"displayName" example:"Jane Ops"`
	Email       string    `json:"email" example:"jane@example.com"`
	CreatedAt   time.Time `json:"createdAt" example:"2023-01-01T12:00:00Z"`
	UpdatedAt   time.Time `json:"updatedAt" example:"2023-01-01T12:00:00Z"`
}

// ToResponse converts an Operator to OperatorResponse (removes sensitive data)
func (o *Operator) ToResponse() OperatorResponse {
	return OperatorResponse{
		ID:          o.ID,
		DisplayName: o.DisplayName,
		Email:       o.Email,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// NewOperator creates a new operator with generated ID
func NewOperator(req CreateOperatorRequest, hashedPassword string) *Operator {
	return &Operator{
		ID:          uuid.New().String(),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    hashedPassword,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// OperatorRepository defines the interface for operator data operations
type OperatorRepository interface {
	Create(operator *Operator) error

	GetByID(id string) (*Operator, error)

	GetByEmail(email string) (*Operator, error)

	Delete(id string) error

	// List operators with pagination
	List(offset, limit int) ([]Operator, int64, error)

	// Check if email exists
	EmailExists(email string) (bool, error)
}
