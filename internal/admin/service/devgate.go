package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid admin password")
	ErrInvalidToken    = errors.New("invalid or expired admin token")
)

const devTokenSubject = "storefront-admin"

// DevGate is the development-only password gate in front of the admin panel.
// It is not an authentication system: one shared password, no users.
type DevGate struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDevGate hashes the configured password once at startup.
func NewDevGate(password, secret string, ttl time.Duration) (*DevGate, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash admin password: %w", err)
	}
	return &DevGate{hash: hash, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Login checks the password and returns a signed token for API clients.
func (g *DevGate) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	claims := jwt.RegisteredClaims{
		Subject:   devTokenSubject,
		IssuedAt:  jwt.NewNumericDate(g.now()),
		ExpiresAt: jwt.NewNumericDate(g.now().Add(g.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		logger.Error("DevGate.Login: failed to sign token", err)
		return "", fmt.Errorf("could not generate token: %w", err)
	}
	return signed, nil
}

func (g *DevGate) Verify(tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(devTokenSubject),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return ErrInvalidToken
	}
	return nil
}
