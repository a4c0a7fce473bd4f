package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

type Claims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`

	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, apperr.Unauthorized("invalid user id in token")
	}
	return id, nil
}

type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue signs a token of the given kind carrying the user's identity claims.
func (s *Service) Issue(userID uuid.UUID, username string, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Username:  username,
		TokenType: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal("failed to sign token", err)
	}

	return tokenString, nil
}

// Verify checks signature and expiry. Every failure is reported as
// Unauthorized so the caller cannot distinguish a bad signature from an
// expired token.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	return claims, nil
}

// IssuePair mints a fresh access/refresh token pair.
func (s *Service) IssuePair(userID uuid.UUID, username string) (*model.TokenPair, error) {
	accessToken, err := s.Issue(userID, username, KindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.Issue(userID, username, KindRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &model.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        int64(s.accessTTL.Seconds()),
		RefreshExpiresIn: int64(s.refreshTTL.Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a brand-new pair. The old
// refresh token is not revoked.
func (s *Service) Refresh(refreshToken string) (*model.TokenPair, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != string(KindRefresh) {
		return nil, apperr.Unauthorized("not a valid refresh token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	return s.IssuePair(userID, claims.Username)
}
