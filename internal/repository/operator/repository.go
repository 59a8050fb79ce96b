package operator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/xpanvictor/newscap/internal/domains/operator"
	"gorm.io/gorm"
)

type GormOperatorRepo struct {
	db *gorm.DB
}

// NewGormOperatorRepo creates a mysql-backed operator repository
func NewGormOperatorRepo(db *gorm.DB) operator.OperatorRepository {
	return &GormOperatorRepo{db: db}
}

// Create implements operator.OperatorRepository
func (g *GormOperatorRepo) Create(op *operator.Operator) error {
	entity := NewOperatorEntityFromDomain(op)
	if err := g.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	*op = *entity.ToDomain()
	return nil
}

// GetByID implements operator.OperatorRepository
func (g *GormOperatorRepo) GetByID(id string) (*operator.Operator, error) {
	var entity OperatorEntity
	if err := g.db.Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operator.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator by ID: %w", err)
	}
	return entity.ToDomain(), nil
}

// GetByEmail implements operator.OperatorRepository
func (g *GormOperatorRepo) GetByEmail(email string) (*operator.Operator, error) {
	var entity OperatorEntity
	if err := g.db.Where("email = ?", email).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operator.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator by email: %w", err)
	}
	return entity.ToDomain(), nil
}

// Delete implements operator.OperatorRepository (soft delete)
func (g *GormOperatorRepo) Delete(id string) error {
	result := g.db.Where("id = ?", id).Delete(&OperatorEntity{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete operator: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return operator.ErrOperatorNotFound
	}
	return nil
}

// List implements operator.OperatorRepository
func (g *GormOperatorRepo) List(offset, limit int) ([]operator.Operator, int64, error) {
	var total int64
	if err := g.db.Model(&OperatorEntity{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count operators: %w", err)
	}

	var entities []OperatorEntity
	if err := g.db.Order("created_at asc").Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list operators: %w", err)
	}

	ops := make([]operator.Operator, len(entities))
	for i := range entities {
		ops[i] = *entities[i].ToDomain()
	}
	return ops, total, nil
}

// EmailExists implements operator.OperatorRepository
func (g *GormOperatorRepo) EmailExists(email string) (bool, error) {
	var count int64
	if err := g.db.Model(&OperatorEntity{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// memoryOperatorRepo backs the admin API when no database is
// configured (dev runs).
type memoryOperatorRepo struct {
	mu      sync.RWMutex
	byID    map[string]operator.Operator
	byEmail map[string]string
}

// NewMemoryOperatorRepo creates an in-process operator repository
func NewMemoryOperatorRepo() operator.OperatorRepository {
	return &memoryOperatorRepo{
		byID:    make(map[string]operator.Operator),
		byEmail: make(map[string]string),
	}
}

func (m *memoryOperatorRepo) Create(op *operator.Operator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[op.Email]; exists {
		return operator.ErrEmailAlreadyExists
	}
	m.byID[op.ID] = *op
	m.byEmail[op.Email] = op.ID
	return nil
}

func (m *memoryOperatorRepo) GetByID(id string) (*operator.Operator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	op, ok := m.byID[id]
	if !ok {
		return nil, operator.ErrOperatorNotFound
	}
	return &op, nil
}

func (m *memoryOperatorRepo) GetByEmail(email string) (*operator.Operator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, operator.ErrOperatorNotFound
	}
	op := m.byID[id]
	return &op, nil
}

func (m *memoryOperatorRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.byID[id]
	if !ok {
		return operator.ErrOperatorNotFound
	}
	delete(m.byEmail, op.Email)
	delete(m.byID, id)
	return nil
}

func (m *memoryOperatorRepo) List(offset, limit int) ([]operator.Operator, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]operator.Operator, 0, len(m.byID))
	for _, op := range m.byID {
		all = append(all, op)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memoryOperatorRepo) EmailExists(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byEmail[email]
	return ok, nil
}
