package operator

import (
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/newscap/internal/domains/operator"
	"gorm.io/gorm"
)

// OperatorEntity represents the database entity for Operator with GORM tags
type OperatorEntity struct {
	ID          string         `gorm:"primaryKey;type:char(36);not null"`
	DisplayName string         `gorm:"column:display_name;type:varchar(255);not null"`
	Email       string         `gorm:"uniqueIndex;type:varchar(191);not null"`
	Password    string         `gorm:"column:password_hash;type:char(60);not null"`
	CreatedAt   time.Time      `gorm:"autoCreateTime(3)"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime(3)"`
	DeletedAt   gorm.DeletedAt `gorm:"index"` // For soft delete
}

// TableName returns the table name for GORM
func (OperatorEntity) TableName() string {
	return "operators"
}

// BeforeCreate is a GORM hook to ensure UUID is set
func (o *OperatorEntity) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// ToDomain converts OperatorEntity to domain Operator
func (o *OperatorEntity) ToDomain() *operator.Operator {
	return &operator.Operator{
		ID:          o.ID,
		DisplayName: o.DisplayName,
		Email:       o.Email,
		Password:    o.Password,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// NewOperatorEntityFromDomain converts domain Operator to OperatorEntity
func NewOperatorEntityFromDomain(op *operator.Operator) *OperatorEntity {
	return &OperatorEntity{
		ID:          op.ID,
		DisplayName: op.DisplayName,
		Email:       op.Email,
		Password:    op.Password,
		CreatedAt:   op.CreatedAt,
		UpdatedAt:   op.UpdatedAt,
	}
}
