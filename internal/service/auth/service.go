package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when username/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service authenticates staff members and issues the bearer tokens the
// admin endpoints require. A single credential pair is configured; there is
// no staff account store.
type Service struct {
	username     string
	passwordHash []byte
	secret       []byte
	tokenTTL     time.Duration
}

// New hashes the configured password once up front so login checks go
// through the same bcrypt comparison as a stored hash would.
func New(username, password, secret string) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		username:     username,
		passwordHash: hash,
		secret:       []byte(secret),
		tokenTTL:     12 * time.Hour,
	}, nil
}

type staffClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies the credential pair and returns a signed token on success.
func (s *Service) Login(username, password string) (string, error) {
	if strings.TrimSpace(username) != s.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := staffClaims{
		Username: s.username,
		Role:     "staff",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a bearer token and returns the staff username it was
// issued to.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &staffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Role != "staff" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}
