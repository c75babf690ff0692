package app

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sro-assistant/internal/pkg/jwtutil"
)

var ErrInvalidCredential = errors.New("invalid client id or secret")

// AuthService exchanges the transport client's credentials for a bearer
// token. The secret is stored as a bcrypt hash in configuration.
type AuthService struct {
	clientID         string
	clientSecretHash string
	jwtSecret        string
	jwtExpiration    time.Duration
}

func NewAuthService(clientID, clientSecretHash, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		clientID:         clientID,
		clientSecretHash: clientSecretHash,
		jwtSecret:        jwtSecret,
		jwtExpiration:    jwtExpiration,
	}
}

func (s *AuthService) IssueToken(clientID, clientSecret string) (string, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return "", ErrInvalidInput
	}

	if clientID != s.clientID || s.clientSecretHash == "" {
		return "", ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.clientSecretHash), []byte(clientSecret)); err != nil {
		return "", ErrInvalidCredential
	}

	return jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, clientID)
}
