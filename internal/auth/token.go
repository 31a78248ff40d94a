package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dangmn/chatline/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims carries the user identity inside the JWT. Subject holds the
// username, "id" the stable user identifier.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens. Logged-out tokens
// go to an in-process revocation set; entries expire with the token TTL so
// the set does not grow without bound.
type TokenService struct {
	secret []byte
	ttl    time.Duration

	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}
}

// Issue creates a signed access token for user.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: string(user.ID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, checking the signature,
// expiry, and the revocation set. It returns the user identity.
func (s *TokenService) Verify(tokenString string) (domain.UserID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	if s.isRevoked(tokenString) {
		return "", ErrTokenRevoked
	}
	return domain.UserID(claims.UserID), nil
}

// Revoke invalidates a token until its natural expiry.
func (s *TokenService) Revoke(tokenString string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.revoked[tokenString] = now.Add(s.ttl)
	for tok, expiry := range s.revoked {
		if expiry.Before(now) {
			delete(s.revoked, tok)
		}
	}
}

func (s *TokenService) isRevoked(tokenString string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.revoked[tokenString]
	return ok && expiry.After(time.Now())
}
