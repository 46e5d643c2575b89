package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/webblog/internal/blog"
	"github.com/yourusername/webblog/internal/config"
	"github.com/yourusername/webblog/internal/users"
)

func TestOpenInMemory(t *testing.T) {
	cfg := config.Default()

	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &users.MemoryRepository{}, s.Users)
	assert.IsType(t, &blog.MemoryRepository{}, s.Blogs)
	assert.Nil(t, s.DB)
	assert.Nil(t, s.Redis)
}

func TestOpenWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.IsType(t, &users.CachedRepository{}, s.Users)
	require.NotNil(t, s.Redis)

	ctx := context.Background()
	require.NoError(t, s.Users.Save(ctx, &users.User{ID: "u1", Email: "a@example.com"}))
	_, err = s.Users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:u1"))

	assert.NoError(t, s.Close())
}

func TestOpenBadRedisURL(t *testing.T) {
	cfg := config.Default()
	cfg.RedisURL = "not-a-url"

	_, err := Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}
