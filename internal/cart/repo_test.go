package cart

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/decor-ecom/internal/platform/mongodb"
)

// Runs against a real MongoDB when TEST_MONGO_URI is set.
func TestMongoRepo_CompareAndSwap(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db, err := mongodb.Connect(ctx, uri, "decor_test")
	require.NoError(t, err)
	defer mongodb.Disconnect(db)

	repo := NewMongoRepo(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	owner := "cas-" + time.Now().Format("150405.000000")
	defer func() { _ = repo.Delete(ctx, owner) }()

	c := New(owner)
	c.Add(Item{ProductID: "p1", Price: dec("12.50"), Quantity: 1})
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, int64(1), c.Version)

	a, err := repo.Get(ctx, owner)
	require.NoError(t, err)
	b, err := repo.Get(ctx, owner)
	require.NoError(t, err)
	assert.True(t, a.Items[0].Price.Equal(dec("12.50")))

	require.NoError(t, a.SetQuantity("p1", 3))
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, b.Remove("p1"))
	assert.ErrorIs(t, repo.Save(ctx, b), ErrConflict)

	dup := New(owner)
	assert.ErrorIs(t, repo.Save(ctx, dup), ErrConflict)
}
