package security

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const accessAudience = "wallet-api"

const (
	ScopeWalletsRead  = "wallets:read"
	ScopeWalletsWrite = "wallets:write"
)

// ClientClaims identifies the API client (the host application) acting on wallets.
type ClientClaims struct {
	ClientID string   `json:"client_id"`
	Scope    []string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants scope. Tokens issued without any
// scope are unrestricted, and write access implies read access.
func (c *ClientClaims) HasScope(scope string) bool {
	if len(c.Scope) == 0 || slices.Contains(c.Scope, scope) {
		return true
	}
	return scope == ScopeWalletsRead && slices.Contains(c.Scope, ScopeWalletsWrite)
}

type TokenManager interface {
	GenerateAccessToken(clientID string, scope []string) (string, error)
	ValidateToken(tokenString string) (*ClientClaims, error)
}

type tokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateAccessToken(clientID string, scope []string) (string, error) {
	if clientID == "" {
		return "", ErrInvalidToken
	}
	now := m.now()
	claims := ClientClaims{
		ClientID: clientID,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{accessAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*ClientClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ClientClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(accessAudience),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*ClientClaims); ok && token.Valid {
		if claims.ClientID == "" {
			claims.ClientID = claims.Subject
		}
		if claims.ClientID == "" {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
