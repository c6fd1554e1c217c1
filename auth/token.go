package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID    string
	ExpiresAt time.Time
}

type TokenService struct {
	jwt      *token.Service
	issuer   string
	duration time.Duration
	now      func() time.Time
}

func NewTokenService(secret, issuer string, duration time.Duration) *TokenService {
	svc := token.NewService(token.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		TokenDuration: duration,
		Issuer:        issuer,
	})

	return &TokenService{
		jwt:      svc,
		issuer:   issuer,
		duration: duration,
		now:      time.Now,
	}
}

// Issue signs a token carrying userID that expires after the configured duration.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()

	claims := token.Claims{
		User: &token.User{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  []string{s.issuer},
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tok, err := s.jwt.Token(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

// Verify checks signature and expiry.
func (s *TokenService) Verify(tok string) (*Identity, error) {
	claims, err := s.jwt.Parse(tok)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.User == nil || claims.User.ID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidToken)
	}

	// Parse skips claim validation, expiry is ours to enforce
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}

	return &Identity{UserID: claims.User.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
