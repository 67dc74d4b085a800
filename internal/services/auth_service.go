package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"belanja/internal/models"
	"belanja/internal/repositories"
)

// AuthService handles signup and login.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokens    *TokenService
	hasher    PasswordHasher
	dummyHash string // compared against when the username is unknown
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokens *TokenService, hasher PasswordHasher) (*AuthService, error) {
	dummyHash, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		hasher:    hasher,
		dummyHash: dummyHash,
	}, nil
}

// Signup stores a new user with a hashed password.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	_, err := s.userRepo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	case !errors.Is(err, repositories.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same name.
		if errors.Is(err, repositories.ErrConstraintViolation) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	log.Printf("Registered user %s (ID: %d)", user.Username, user.ID)
	return user, nil
}

// Login verifies the credentials and returns a signed token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(Identity{UserID: user.ID, Username: user.Username})
}

// ValidateToken exposes the token check to callers holding only the AuthService.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokens.Validate(tokenString)
}
