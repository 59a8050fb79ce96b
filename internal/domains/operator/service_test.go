package operator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xpanvictor/newscap/internal/domains/operator"
	operatorrepo "github.com/xpanvictor/newscap/internal/repository/operator"
	"github.com/xpanvictor/newscap/pkg/Logger"
)

func newService(t *testing.T) operator.OperatorService {
	t.Helper()
	return operator.NewOperatorService(
		operatorrepo.NewMemoryOperatorRepo(),
		Logger.New(false),
		"test-secret",
		time.Hour,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, operator.CreateOperatorRequest{
		DisplayName: "Jane Ops",
		Email:       "jane@example.com",
		Password:    "securePassword123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created.ID == "" {
		t.Error("Expected generated operator id")
	}

	resp, tokens, err := svc.Login(ctx, operator.LoginRequest{
		Email:    "jane@example.com",
		Password: "securePassword123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Email != "jane@example.com" {
		t.Errorf("Expected login response for jane, got %s", resp.Email)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("Expected both tokens to be issued")
	}

	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.OperatorID != created.ID {
		t.Errorf("Expected claims for %s, got %s", created.ID, claims.OperatorID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, operator.CreateOperatorRequest{
		DisplayName: "Jane Ops",
		Email:       "jane@example.com",
		Password:    "securePassword123",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, err := svc.Login(ctx, operator.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	if !errors.Is(err, operator.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}

	_, _, err = svc.Login(ctx, operator.LoginRequest{Email: "nobody@example.com", Password: "x"})
	if !errors.Is(err, operator.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	req := operator.CreateOperatorRequest{
		DisplayName: "Jane Ops",
		Email:       "jane@example.com",
		Password:    "securePassword123",
	}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, operator.ErrEmailAlreadyExists) {
		t.Errorf("Expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	svc := newService(t)
	if _, err := svc.ValidateToken(context.Background(), "not-a-jwt"); !errors.Is(err, operator.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, operator.CreateOperatorRequest{
		DisplayName: "Jane Ops",
		Email:       "jane@example.com",
		Password:    "securePassword123",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, tokens, err := svc.Login(ctx, operator.LoginRequest{Email: "jane@example.com", Password: "securePassword123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	fresh, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("Expected refreshed access token")
	}
}
