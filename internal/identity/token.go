package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cookconnect/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "cookconnect-api"
	tokenAudience = "cookconnect-client"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Verifier turns a bearer credential into a Viewer.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Viewer, error)
}

// RevocationStore remembers revoked token ids until they would expire anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims is the payload of a session token.
type Claims struct {
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	secret      []byte
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

// NewTokenService builds a TokenService. revocations may be nil.
func NewTokenService(secret string, ttl time.Duration, revocations RevocationStore) *TokenService {
	return &TokenService{
		secret:      []byte(secret),
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue creates a signed token for user.
func (s *TokenService) Issue(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) parse(credential string) (*Claims, error) {
	if credential == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify validates credential and returns the verified viewer.
func (s *TokenService) Verify(ctx context.Context, credential string) (Viewer, error) {
	claims, err := s.parse(credential)
	if err != nil {
		return Anonymous(), err
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return Anonymous(), ErrInvalidToken
	}

	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err == nil && revoked {
			return Anonymous(), ErrRevokedToken
		}
	}

	return Verified(uint(userID), claims.Role), nil
}

// Revoke blacklists credential for the rest of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, credential string) error {
	if s.revocations == nil {
		return nil
	}
	claims, err := s.parse(credential)
	if err != nil {
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Resolve never fails the request: the returned Viewer is always usable and
// is Anonymous for a missing or rejected credential. The error says why a
// presented credential was rejected and is nil when none was sent.
func Resolve(ctx context.Context, v Verifier, header string) (Viewer, error) {
	if strings.TrimSpace(header) == "" {
		return Anonymous(), nil
	}
	token, ok := BearerToken(header)
	if !ok || v == nil {
		return Anonymous(), ErrInvalidToken
	}
	viewer, err := v.Verify(ctx, token)
	if err != nil {
		return Anonymous(), err
	}
	return viewer, nil
}
