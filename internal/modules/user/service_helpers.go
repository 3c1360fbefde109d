package user

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// hashPassword uses bcrypt to generate a hash from a plaintext password.
// bcrypt is intentionally slow; the cost factor is the brute-force budget.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// checkPasswordHash compares a plaintext password with a bcrypt hash.
func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// generateSecureToken creates a random, URL-safe string from n random bytes.
func generateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashToken creates a SHA-256 hash of a token string. Reset tokens are stored
// hashed so a database leak does not expose usable reset links.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// signTransientValue wraps a short-lived value (OAuth state, PKCE verifier) in
// a signed HS256 token suitable for storage in an httpOnly cookie. The
// signature stops clients from minting or tampering with transient state; the
// exp claim bounds the authorization attempt to one hour.
func signTransientValue(secret, value string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"v":   value,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseTransientValue verifies a signed transient cookie value and returns the
// embedded value. Expired or tampered tokens yield an error.
func parseTransientValue(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid transient token")
	}
	v, ok := claims["v"].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("transient token missing value claim")
	}
	return v, nil
}
