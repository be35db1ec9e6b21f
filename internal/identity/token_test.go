package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"cookconnect/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

type memoryRevocations struct {
	mu   sync.Mutex
	jtis map[string]time.Duration
}

func (m *memoryRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jtis == nil {
		m.jtis = map[string]time.Duration{}
	}
	m.jtis[jti] = ttl
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jtis[jti]
	return ok, nil
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	token, err := svc.Issue(&models.User{ID: 7, Username: "chef", Role: models.RoleAdmin})
	require.NoError(t, err)

	viewer, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, viewer.Authenticated())
	assert.Equal(t, uint(7), viewer.UserID())
	assert.True(t, viewer.IsAdmin())
}

func TestTokenService_RejectsBadTokens(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Verify(ctx, "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("another-secret-that-is-long-enough-too", time.Hour, nil)
		token, err := other.Issue(&models.User{ID: 1, Role: models.RoleUser})
		require.NoError(t, err)
		_, err = svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenService(testSecret, time.Minute, nil)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.Issue(&models.User{ID: 1, Role: models.RoleUser})
		require.NoError(t, err)
		_, err = svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": "1",
			"iss": tokenIssuer,
			"aud": "someone-else",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenService_Revoke(t *testing.T) {
	store := &memoryRevocations{}
	svc := NewTokenService(testSecret, time.Hour, store)
	ctx := context.Background()

	token, err := svc.Issue(&models.User{ID: 3, Role: models.RoleUser})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	for _, ttl := range store.jtis {
		assert.LessOrEqual(t, ttl, time.Hour)
	}
}

func TestResolve_SoftFailsToAnonymous(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		v       Verifier
		header  string
		wantErr error
	}{
		{name: "no header", v: svc, header: ""},
		{name: "wrong scheme", v: svc, header: "Basic abc", wantErr: ErrInvalidToken},
		{name: "malformed token", v: svc, header: "Bearer broken", wantErr: ErrInvalidToken},
		{name: "no verifier", v: nil, header: "Bearer broken", wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viewer, err := Resolve(ctx, tt.v, tt.header)
			assert.False(t, viewer.Authenticated())
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	token, err := svc.Issue(&models.User{ID: 9, Role: models.RoleUser})
	require.NoError(t, err)
	viewer, err := Resolve(ctx, svc, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), viewer.UserID())
}

func TestViewer_CanModify(t *testing.T) {
	t.Parallel()
	owner := Verified(1, models.RoleUser)
	other := Verified(2, models.RoleUser)
	admin := Verified(3, models.RoleAdmin)

	assert.True(t, owner.CanModify(1))
	assert.False(t, other.CanModify(1))
	assert.True(t, admin.CanModify(1))
	assert.False(t, Anonymous().CanModify(0))
	assert.False(t, Verified(0, models.RoleAdmin).Authenticated())
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r-secret")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "Sup3r-secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "x")
	assert.Error(t, err)
}
