package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/chat-server/internal/config"
	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
	"github.com/s21platform/chat-server/internal/pkg/password"
	"github.com/s21platform/chat-server/internal/pkg/validator"
)

type AuthService struct {
	repo     DBRepo
	tokens   TokenIssuer
	sessions SessionCache
}

func NewAuth(repo DBRepo, tokens TokenIssuer, sessions SessionCache) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
	}
}

func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if err := validator.ValidateRegister(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.Internal("failed to check username", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("username already taken")
	}

	existing, err = s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, hashed, req.DisplayName)
	if err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}

	tokens, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	s.storeSession(ctx, user.ID, user.Username)

	return &model.AuthResponse{User: user.ToResponse(), Tokens: *tokens}, nil
}

func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if err := validator.ValidateLogin(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	// same message either way, so a caller cannot probe which emails exist
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	tokens, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	s.storeSession(ctx, user.ID, user.Username)

	return &model.AuthResponse{User: user.ToResponse(), Tokens: *tokens}, nil
}

// Refresh trades a valid refresh token for a new pair. The presented refresh
// token stays valid until its own expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	return s.tokens.Refresh(refreshToken)
}

// Logout drops the session record. Issued tokens stay valid until expiry;
// only the cache-side bookkeeping is removed.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.DeleteSession(ctx, userID); err != nil {
		return apperr.Internal("failed to delete session", err)
	}

	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	response := user.ToResponse()

	return &response, nil
}

// storeSession keeps best-effort bookkeeping; a cache failure never fails the
// login.
func (s *AuthService) storeSession(ctx context.Context, userID uuid.UUID, username string) {
	now := time.Now()
	err := s.sessions.SetSession(ctx, model.Session{
		UserID:     userID,
		Username:   username,
		CreatedAt:  now,
		LastActive: now,
	})
	if err != nil {
		logger_lib.FromContext(ctx, config.KeyLogger).Error(fmt.Sprintf("failed to store session: %v", err))
	}
}
