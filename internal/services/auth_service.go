// Package services – AuthService
//
// This file implements registration and login. Passwords are stored as
// bcrypt hashes; a successful call returns a signed HS256 access token
// carrying the user id, profile role, and staff flag. Registration creates
// the identity and its profile atomically so no user exists without a role.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/auth"
	"github.com/tbourn/go-marketplace-backend/internal/domain"
	"github.com/tbourn/go-marketplace-backend/internal/repo"
)

// Credentials is the result of a successful registration or login.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   string `json:"user_id"`
}

// AuthService implements registration and login.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// JWTSecret signs issued access tokens.
	JWTSecret string
	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration
	// BcryptCost tunes password hashing; values below bcrypt.MinCost fall
	// back to the library default.
	BcryptCost int
}

// NewAuthService constructs an AuthService with a 24h token lifetime.
func NewAuthService(db *gorm.DB, secret string) *AuthService {
	return &AuthService{DB: db, JWTSecret: secret, TokenTTL: 24 * time.Hour}
}

// Register creates a new user with the given profile type ("customer" when
// empty) and returns fresh credentials. Username and email must be unused.
func (s *AuthService) Register(ctx context.Context, username, email, password, profileType string) (*Credentials, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, invalidf("username", "must not be empty")
	}
	if email == "" {
		return nil, invalidf("email", "must not be empty")
	}
	if password == "" {
		return nil, invalidf("password", "must not be empty")
	}
	switch profileType {
	case "":
		profileType = domain.ProfileTypeCustomer
	case domain.ProfileTypeCustomer, domain.ProfileTypeBusiness:
	default:
		return nil, invalidf("type", "must be customer or business")
	}

	if taken, err := repo.UsernameTaken(ctx, s.DB, username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := repo.EmailTaken(ctx, s.DB, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password, s.BcryptCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateUser(ctx, tx, u); err != nil {
			if repo.IsUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return err
		}
		return repo.CreateProfile(ctx, tx, &domain.Profile{
			ID:     uuid.NewString(),
			UserID: u.ID,
			Type:   profileType,
		})
	})
	if err != nil {
		return nil, err
	}

	token, err := auth.IssueToken(s.JWTSecret, u.ID, profileType, u.IsStaff, s.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &Credentials{Token: token, Username: u.Username, Email: u.Email, UserID: u.ID}, nil
}

// Login verifies a username/password pair and returns fresh credentials.
// Unknown usernames yield ErrUserNotFound; a wrong password yields
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Credentials, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidf("username", "username and password are required")
	}

	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	role := domain.ProfileTypeCustomer
	if p, err := repo.GetProfileByUserID(ctx, s.DB, u.ID); err == nil {
		role = p.Type
	}

	token, err := auth.IssueToken(s.JWTSecret, u.ID, role, u.IsStaff, s.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &Credentials{Token: token, Username: u.Username, Email: u.Email, UserID: u.ID}, nil
}
