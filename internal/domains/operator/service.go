package operator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthTokens represents JWT tokens for authentication
// @Description JWT authentication tokens
type AuthTokens struct {
	AccessToken  string    `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refreshToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expiresAt" example:"2023-01-02T12:00:00Z"`
}

// Claims represents JWT claims
type Claims struct {
	OperatorID string `json:"operatorId"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// OperatorService defines the interface for operator business logic
type OperatorService interface {
	Register(ctx context.Context, req CreateOperatorRequest) (*OperatorResponse, error)
	Login(ctx context.Context, req LoginRequest) (*OperatorResponse, *AuthTokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error)

	GetProfile(ctx context.Context, operatorID string) (*OperatorResponse, error)
	ListOperators(ctx context.Context, offset, limit int) ([]OperatorResponse, int64, error)

	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

type operatorService struct {
	repository OperatorRepository
	logger     *Logger.Logger
	jwtSecret  string
	tokenTTL   time.Duration
}

// Register implements OperatorService
func (s *operatorService) Register(ctx context.Context, req CreateOperatorRequest) (*OperatorResponse, error) {
	exists, err := s.repository.EmailExists(req.Email)
	if err != nil {
		s.logger.Errorf("error checking email existence: %v", err)
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Errorf("error hashing password: %v", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	op := NewOperator(req, string(hashedPassword))
	if err := s.repository.Create(op); err != nil {
		s.logger.Errorf("error creating operator: %v", err)
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	s.logger.Infof("operator registered successfully: %s (%s)", op.ID, op.Email)
	response := op.ToResponse()
	return &response, nil
}

// Login implements OperatorService
func (s *operatorService) Login(ctx context.Context, req LoginRequest) (*OperatorResponse, *AuthTokens, error) {
	op, err := s.repository.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, ErrOperatorNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Errorf("error getting operator by email: %v", err)
		return nil, nil, fmt.Errorf("failed to get operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokens(op.ID, op.Email)
	if err != nil {
		s.logger.Errorf("error generating tokens: %v", err)
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Infof("operator logged in successfully: %s (%s)", op.ID, op.Email)
	response := op.ToResponse()
	return &response, tokens, nil
}

// RefreshToken implements OperatorService
func (s *operatorService) RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	token, err := jwt.ParseWithClaims(refreshToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	op, err := s.repository.GetByID(claims.OperatorID)
	if err != nil {
		return nil, ErrOperatorNotFound
	}

	newTokens, err := s.generateTokens(op.ID, op.Email)
	if err != nil {
		s.logger.Errorf("error generating new tokens: %v", err)
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return newTokens, nil
}

// GetProfile implements OperatorService
func (s *operatorService) GetProfile(ctx context.Context, operatorID string) (*OperatorResponse, error) {
	op, err := s.repository.GetByID(operatorID)
	if err != nil {
		return nil, err
	}

	response := op.ToResponse()
	return &response, nil
}

// ListOperators implements OperatorService
func (s *operatorService) ListOperators(ctx context.Context, offset, limit int) ([]OperatorResponse, int64, error) {
	ops, total, err := s.repository.List(offset, limit)
	if err != nil {
		s.logger.Errorf("error listing operators: %v", err)
		return nil, 0, err
	}

	responses := make([]OperatorResponse, len(ops))
	for i, op := range ops {
		responses[i] = op.ToResponse()
	}

	return responses, total, nil
}

// ValidateToken implements OperatorService
func (s *operatorService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Helper function to generate JWT tokens
func (s *operatorService) generateTokens(operatorID, email string) (*AuthTokens, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	accessClaims := &Claims{
		OperatorID: operatorID,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   operatorID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	// Refresh token lives 24x longer
	refreshExpiresAt := time.Now().Add(s.tokenTTL * 24)
	refreshClaims := &Claims{
		OperatorID: operatorID,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(refreshExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   operatorID,
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &AuthTokens{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    expiresAt,
	}, nil
}

// NewOperatorService creates a new operator service
func NewOperatorService(repository OperatorRepository, logger *Logger.Logger, jwtSecret string, tokenTTL time.Duration) OperatorService {
	if tokenTTL == 0 {
		tokenTTL = 24 * time.Hour // default 24 hours
	}

	return &operatorService{
		repository: repository,
		logger:     logger,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
	}
}
