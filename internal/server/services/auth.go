// Package services holds the backend's business logic: login against the
// local user table, the remote catalog and order push, and the sync status
// summary served to agents.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/posync/internal/auth"
	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/dmitrijs2005/posync/internal/server/config"
	"github.com/dmitrijs2005/posync/internal/server/repositories/local"
	"golang.org/x/crypto/bcrypt"
)

// AdminUsername is the account seeded into an empty user table.
const AdminUsername = "admin"

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

// dummyHash is compared against when the user does not exist so that unknown
// and known usernames take the same time to reject.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("posync-dummy-password"), bcrypt.MinCost)

// AuthResult is what a successful login returns to the agent.
type AuthResult struct {
	Token      string            `json:"token"`
	Username   string            `json:"username"`
	Permission models.Permission `json:"permission"`
	UserID     int64             `json:"userId"`
	ExpiresAt  time.Time         `json:"expiresAt"`
	Message    string            `json:"message"`
}

type AuthService struct {
	users    local.UserRepository
	secret   []byte
	validity time.Duration
	logger   logging.Logger
}

func NewAuthService(users local.UserRepository, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(cfg.SecretKey),
		validity: cfg.TokenValidity,
		logger:   logger.With("module", "auth_service"),
	}
}

// Authenticate checks the credentials and issues a session token.
// Bad credentials of any kind yield common.ErrorUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	id := auth.Identity{UserID: user.ID, Username: user.Username, Permission: user.Permission}
	token, err := auth.GenerateToken(id, s.secret, s.validity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "username", user.Username, "permission", user.Permission)
	return &AuthResult{
		Token:      token,
		Username:   user.Username,
		Permission: user.Permission,
		UserID:     user.ID,
		ExpiresAt:  time.Now().Add(s.validity),
		Message:    "Login successful",
	}, nil
}

// CreateUser stores a new account with a bcrypt hash of password.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, perm models.Permission) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}
	if models.Rank(perm) == 0 {
		return nil, fmt.Errorf("%w: unknown permission %q", common.ErrorValidation, perm)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{Username: username, PasswordHash: string(hash), Permission: perm}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// EnsureAdmin seeds an admin account when no user exists yet. When password
// is empty a random one is generated and returned so it can be shown once.
func (s *AuthService) EnsureAdmin(ctx context.Context, password string) (string, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		return "", nil
	}

	generated := ""
	if password == "" {
		password, err = common.GeneratePassword(common.GeneratedPasswordBytes)
		if err != nil {
			return "", fmt.Errorf("failed to generate admin password: %w", err)
		}
		generated = password
	}

	if _, err := s.CreateUser(ctx, AdminUsername, password, models.PermissionAdmin); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "seeded admin account", "username", AdminUsername)
	return generated, nil
}
