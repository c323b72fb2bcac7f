package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/landonharris622-gif/Primal-live/internal/audit"
	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/repository"
	"github.com/landonharris622-gif/Primal-live/pkg/jwt"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("email or username already used")
	ErrInvalidRole        = errors.New("invalid role")
)

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo   repository.UserRepository
	tokens *jwt.Manager
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, tokens *jwt.Manager) UserService {
	return &userServiceImpl{repo: repo, tokens: tokens}
}

// Register registers a new user.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleViewer,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		l.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after register")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExp,
	}, nil
}

// Login authenticates a user by email and password.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, "", email, "login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to look up user for login")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.Log(ctx, audit.ActionLoginFailed, user.ID, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after login")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExp,
	}, nil
}

// RefreshToken exchanges a refresh token for a new token pair.
func (s *userServiceImpl) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	claims, err := s.tokens.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if claims.Type != "refresh" {
		return nil, ErrInvalidCredentials
	}

	// Re-read the account so role changes take effect on refresh.
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Str(log.FieldUserID, claims.UserID).Msg("failed to look up user for refresh")
		return nil, err
	}

	pair, err := s.tokens.RefreshTokens(req.RefreshToken, user.Email, user.Username, user.Role)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	audit.Log(ctx, audit.ActionRefreshToken, user.ID, "tokens refreshed")

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExp,
	}, nil
}

// Logout revokes every outstanding token for the user.
func (s *userServiceImpl) Logout(ctx context.Context, userID string) error {
	s.tokens.RevokeUserTokens(userID)
	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
	return nil
}

// GetUser returns the profile for a user id.
func (s *userServiceImpl) GetUser(ctx context.Context, userID string) (*domain.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// ListUsers returns recently registered users.
func (s *userServiceImpl) ListUsers(ctx context.Context, limit int) ([]domain.UserResponse, error) {
	users, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	responses := make([]domain.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

// UpdateRole changes a user's role and revokes their existing tokens so
// the change takes effect immediately.
func (s *userServiceImpl) UpdateRole(ctx context.Context, actorID, targetID, role string) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	if !domain.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Str(log.FieldUserID, targetID).Msg("failed to update user role")
		return nil, err
	}

	s.tokens.RevokeUserTokens(targetID)
	audit.LogWithTarget(ctx, audit.ActionRoleChange, actorID, targetID, "user role changed to "+role)

	return s.GetUser(ctx, targetID)
}
