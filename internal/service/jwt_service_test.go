package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/config"
	"github.com/egooptika/storefront/internal/domain"
)

func jwtTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront", Version: "test"},
		JWT: config.JWTConfig{Secret: "test-secret", SessionTTL: time.Hour},
	}
}

func testUser() *domain.User {
	return &domain.User{ID: 7, Username: "ivan", Email: "ivan@example.com", Name: "Иван"}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService(jwtTestConfig(), zap.NewNop())

	token, err := svc.Generate(testUser(), "remote-jwt-token")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("Expected user ID 7, got %d", claims.UserID)
	}
	if claims.Username != "ivan" {
		t.Errorf("Expected username ivan, got %s", claims.Username)
	}
	// 远端令牌原样封装在会话里
	if claims.RemoteToken != "remote-jwt-token" {
		t.Errorf("Expected remote token carried, got %s", claims.RemoteToken)
	}
}

func TestJWTService_Validate_WrongSecret(t *testing.T) {
	svc := NewJWTService(jwtTestConfig(), zap.NewNop())
	token, err := svc.Generate(testUser(), "rt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	otherCfg := jwtTestConfig()
	otherCfg.JWT.Secret = "different-secret"
	other := NewJWTService(otherCfg, zap.NewNop())

	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTService_Validate_Expired(t *testing.T) {
	cfg := jwtTestConfig()
	cfg.JWT.SessionTTL = -time.Minute
	svc := NewJWTService(cfg, zap.NewNop())

	token, err := svc.Generate(testUser(), "rt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_Validate_IssuerMismatch(t *testing.T) {
	svc := NewJWTService(jwtTestConfig(), zap.NewNop())
	token, err := svc.Generate(testUser(), "rt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	otherCfg := jwtTestConfig()
	otherCfg.App.Name = "another-app"
	other := NewJWTService(otherCfg, zap.NewNop())

	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken on issuer mismatch, got %v", err)
	}
}

func TestJWTService_Validate_Garbage(t *testing.T) {
	svc := NewJWTService(jwtTestConfig(), zap.NewNop())

	if _, err := svc.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}
