package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/memelab/memeqa/internal/config"
)

// TokenService issues and verifies the one-time login tokens mailed to
// registered contributors. A token binds an email to an issue timestamp and a
// random nonce, sealed with a SHA-256 digest over the secret key.
type TokenService struct {
	secret string
	ttl    time.Duration
}

// NewTokenService creates a new token service.
// Parameters:
//   - cfg: auth configuration with the secret key and token lifetime.
// Returns:
//   - *TokenService: initialized service.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: cfg.SecretKey, ttl: ttl}
}

// Generate issues a login token for the given email.
// Parameters:
//   - email: address the token authenticates.
// Returns:
//   - string: URL-safe opaque token.
//   - error: non-nil if randomness is unavailable.
func (s *TokenService) Generate(email string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate token nonce: %w", err)
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	nonceHex := hex.EncodeToString(nonce)
	sig := s.sign(email, ts, nonceHex)

	raw := strings.Join([]string{email, ts, nonceHex, sig}, ":")
	return base64.URLEncoding.EncodeToString([]byte(raw)), nil
}

// Verify checks a login token and returns the email it authenticates.
// Parameters:
//   - token: URL-safe token from the login link.
// Returns:
//   - string: verified email address.
//   - error: ErrInvalidToken when malformed, tampered, or expired.
func (s *TokenService) Verify(token string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 {
		return "", ErrInvalidToken
	}
	email, tsStr, nonceHex, sig := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(email, tsStr, nonceHex)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return "", ErrInvalidToken
	}

	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if time.Since(time.Unix(ts, 0)) > s.ttl {
		return "", ErrInvalidToken
	}

	return email, nil
}

func (s *TokenService) sign(email, ts, nonceHex string) string {
	sum := sha256.Sum256([]byte(email + ":" + ts + ":" + nonceHex + ":" + s.secret))
	return hex.EncodeToString(sum[:])
}
