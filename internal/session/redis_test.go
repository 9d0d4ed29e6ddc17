package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/decor-ecom/internal/auth"
)

// Runs against a real Redis when TEST_REDIS_URL is set.
func TestRedisStore_Lifecycle(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	p := auth.Principal{Subject: "v1", Role: auth.RoleVendor, SessionID: "test-" + time.Now().Format("150405.000"), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, s.Create(ctx, p))

	ok, err := s.Exists(ctx, p.SessionID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, ok, err := s.Get(ctx, p.SessionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, auth.RoleVendor, got.Role)

	require.NoError(t, s.Revoke(ctx, p.SessionID))
	ok, err = s.Exists(ctx, p.SessionID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_RejectsExpired(t *testing.T) {
	s := &RedisStore{now: time.Now}
	err := s.Create(context.Background(), auth.Principal{SessionID: "x", ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}
