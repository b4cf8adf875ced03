package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront-service/pkg/redisclient"
)

func newManager(t *testing.T) (*miniredis.Miniredis, *Manager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisclient.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return mr, NewManager(client, Options{
		Secret:       "test-secret",
		Issuer:       "storefront-test",
		TTL:          time.Hour,
		Username:     "admin",
		PasswordHash: string(hash),
	})
}

func TestLoginResolveLogout(t *testing.T) {
	_, m := newManager(t)
	ctx := context.Background()

	s, token, err := m.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, resolved.ID)
	assert.Equal(t, "admin", resolved.Username)

	require.NoError(t, m.Logout(ctx, resolved))
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, m := newManager(t)
	_, _, err := m.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = m.Login(context.Background(), "root", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveRejectsForeignToken(t *testing.T) {
	_, m := newManager(t)
	_, err := m.Resolve(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager(m.client, Options{Secret: "other", Issuer: "storefront-test", Username: "admin", PasswordHash: m.opts.PasswordHash})
	_, token, err := other.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	_, err = m.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionExpiresWithRedisTTL(t *testing.T) {
	mr, m := newManager(t)
	ctx := context.Background()
	_, token, err := m.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
