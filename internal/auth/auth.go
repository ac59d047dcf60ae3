// Package auth handles password sign-in and session tokens for remote
// mode. Demo mode never touches it.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	applog "github.com/Cherval/me-my-cal/internal/log"
	"github.com/Cherval/me-my-cal/internal/records"
	"github.com/Cherval/me-my-cal/internal/records/sqlite"
)

const bcryptCost = 12

var ErrInvalidCredentials = errors.New("invalid email or password")

// Service issues and validates session tokens. Tokens are HS256 JWTs kept
// in an in-memory TTL registry; sign-out removes the registry entry, so a
// token that is still cryptographically valid no longer resumes a session.
type Service struct {
	secret   string
	tokenTTL time.Duration
	users    records.UserStore
	sessions *cache.Cache
	logger   *slog.Logger
}

func NewService(secret string, tokenTTL time.Duration, users records.UserStore) *Service {
	return &Service{
		secret:   secret,
		tokenTTL: tokenTTL,
		users:    users,
		sessions: cache.New(tokenTTL, 2*tokenTTL),
		logger:   applog.WithComponent(applog.ComponentAuth),
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CompareHashAndPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// SignInWithPassword verifies the credentials and opens a session.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (token, userID string, err error) {
	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, sqlite.ErrUserNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}
	if err := CompareHashAndPassword(user.PasswordHash, password); err != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err = s.generateToken(user.ID)
	if err != nil {
		return "", "", err
	}
	s.sessions.Set(token, user.ID, s.tokenTTL)
	return token, user.ID, nil
}

// Resume returns the user id behind a presented token, or false when the
// token is unknown, expired or signed out.
func (s *Service) Resume(_ context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	v, found := s.sessions.Get(token)
	if !found {
		return "", false
	}
	userID, err := s.validateToken(token)
	if err != nil || userID != v.(string) {
		s.logger.Warn("Revoking session with invalid token", "error", err)
		s.sessions.Delete(token)
		return "", false
	}
	return userID, true
}

// SignOut revokes the session for the given token.
func (s *Service) SignOut(_ context.Context, token string) {
	s.sessions.Delete(token)
}

func (s *Service) generateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *Service) validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("invalid token: 'sub' claim missing or not a string")
	}
	return sub, nil
}
