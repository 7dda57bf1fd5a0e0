// Package auth guards the roster API: an Authenticator checks credentials and
// a TokenIssuer hands out bearer tokens for the checked user.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Authenticator verifies a username/password pair
type Authenticator interface {
	Authenticate(username, password string) error
}

// StaticAuthenticator accepts exactly one configured user
type StaticAuthenticator struct {
	Username     string
	PasswordHash string // bcrypt
}

// NewStaticAuthenticator hashes password and returns an authenticator for it
func NewStaticAuthenticator(username, password string) (*StaticAuthenticator, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &StaticAuthenticator{Username: username, PasswordHash: hashed}, nil
}

func (a *StaticAuthenticator) Authenticate(username, password string) error {
	if username != a.Username || !CheckPassword(a.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	return nil
}

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// Claims carried by an access token
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

// Issue returns a signed token for username and its expiry. With a TTL of
// zero or less the token never expires and the returned time is zero.
func (t *TokenIssuer) Issue(username string) (string, time.Time, error) {
	now := t.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var exp time.Time
	if t.TTL > 0 {
		exp = now.Add(t.TTL)
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies tokenStr and returns its claims
func (t *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.Now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// username under "user" in the gin context.
func Middleware(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}
		claims, err := issuer.Parse(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("user", claims.Username)
		c.Next()
	}
}
