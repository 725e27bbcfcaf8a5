package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/locvowork/task_management_sample/internal/auth"
	"github.com/locvowork/task_management_sample/internal/domain"
)

const minPasswordLength = 6

// errInvalidCredentials is shared by the unknown-email and wrong-password paths.
var errInvalidCredentials = domain.Unauthorized("Invalid email or password")

type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
}

type authService struct {
	users  domain.UserRepository
	hasher auth.PasswordHasher
	codec  *auth.TokenCodec
}

func NewAuthService(users domain.UserRepository, hasher auth.PasswordHasher, codec *auth.TokenCodec) AuthService {
	return &authService{users: users, hasher: hasher, codec: codec}
}

// Register creates the account and returns its projection with a fresh session token.
func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, "", domain.Validation("Name, email, and password are required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, "", domain.Validation("Password must be at least %d characters", minPasswordLength)
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, "", domain.Conflict("Email already registered")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}

	digest, err := s.hasher.Digest(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("digest password: %w", err)
	}

	user := &domain.User{Name: req.Name, Email: req.Email, PasswordHash: digest}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	return s.session(user)
}

// Login reports the same Unauthorized error for an unknown email and a wrong password.
func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, "", domain.Validation("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", errInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, "", errInvalidCredentials
	}

	return s.session(user)
}

func (s *authService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *authService) session(user *domain.User) (*domain.User, string, error) {
	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	public := user.Public()
	return &public, token, nil
}
