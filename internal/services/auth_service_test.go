package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-marketplace-backend/internal/auth"
	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret")
	svc.BcryptCost = 4 // keep hashing fast in tests

	creds, err := svc.Register(context.Background(), "frank", "frank@example.com", "hunter2", domain.ProfileTypeBusiness)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if creds.Token == "" || creds.UserID == "" {
		t.Fatalf("incomplete credentials: %+v", creds)
	}

	claims, err := auth.ParseToken("test-secret", creds.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != creds.UserID || claims.Role != domain.ProfileTypeBusiness {
		t.Fatalf("claims = %+v", claims)
	}

	// The registration also created the profile.
	var p domain.Profile
	if err := db.Where("user_id = ?", creds.UserID).First(&p).Error; err != nil {
		t.Fatalf("profile missing: %v", err)
	}
	if p.Type != domain.ProfileTypeBusiness {
		t.Fatalf("profile type = %s", p.Type)
	}

	// And the stored password is a hash, not the plaintext.
	var u domain.User
	if err := db.First(&u, "id = ?", creds.UserID).Error; err != nil {
		t.Fatalf("user missing: %v", err)
	}
	if u.PasswordHash == "hunter2" {
		t.Fatalf("password stored in plaintext")
	}

	got, err := svc.Login(context.Background(), "frank", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.UserID != creds.UserID {
		t.Fatalf("login user = %s, want %s", got.UserID, creds.UserID)
	}
}

func TestAuth_Register_DefaultsToCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "s")
	svc.BcryptCost = 4

	creds, err := svc.Register(context.Background(), "ada", "ada@example.com", "pw", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	var p domain.Profile
	if err := db.Where("user_id = ?", creds.UserID).First(&p).Error; err != nil {
		t.Fatalf("profile missing: %v", err)
	}
	if p.Type != domain.ProfileTypeCustomer {
		t.Fatalf("profile type = %s, want customer", p.Type)
	}
}

func TestAuth_Register_Duplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "s")
	svc.BcryptCost = 4

	if _, err := svc.Register(context.Background(), "dup", "dup@example.com", "pw", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "dup", "other@example.com", "pw", ""); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "other", "dup@example.com", "pw", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuth_Register_InvalidType(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "s")

	_, err := svc.Register(context.Background(), "x", "x@example.com", "pw", "admin")
	ve, ok := AsValidation(err)
	if !ok || ve.Field != "type" {
		t.Fatalf("expected type validation error, got %v", err)
	}
}

func TestAuth_Login_Failures(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "s")
	svc.BcryptCost = 4

	if _, err := svc.Register(context.Background(), "lisa", "lisa@example.com", "correct", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "nobody", "pw"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "lisa", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
