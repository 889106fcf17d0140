package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

func TestFeedService_NormalizeLimit(t *testing.T) {
	svc := NewFeedService(nil, nil, 0, 0)

	tests := []struct {
		in, want int
	}{
		{-5, DefaultFeedLimit},
		{0, DefaultFeedLimit},
		{1, 1},
		{50, 50},
		{MaxFeedLimit, MaxFeedLimit},
		{MaxFeedLimit + 1, MaxFeedLimit},
		{10_000, MaxFeedLimit},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, svc.NormalizeLimit(tt.in))
		})
	}

	t.Run("configured bounds", func(t *testing.T) {
		svc := NewFeedService(nil, nil, 5, 10)
		assert.Equal(t, 5, svc.NormalizeLimit(0))
		assert.Equal(t, 10, svc.NormalizeLimit(11))
	})

	t.Run("default above max is clamped", func(t *testing.T) {
		svc := NewFeedService(nil, nil, 50, 10)
		assert.Equal(t, 10, svc.NormalizeLimit(0))
	})
}

func TestGetFeed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "a@x.io", "Alice")
	bob := env.register(t, "b@x.io", "Bob")

	first := env.post(t, alice, "first", models.VisibilityPublic)
	second := env.post(t, bob, "second", models.VisibilityMembers)
	third := env.post(t, alice, "third", models.VisibilityPublic)

	// a visibility the API never produces must not leak into the feed
	env.store.posts["7d1e1c2a-3b4c-4d5e-8f90-a1b2c3d4e5f6"] = &models.Post{
		ID:         "7d1e1c2a-3b4c-4d5e-8f90-a1b2c3d4e5f6",
		AuthorID:   alice,
		Visibility: models.Visibility("private"),
		CreatedAt:  env.store.tick(),
	}

	_, err := env.reactions.ToggleLike(ctx, first, bob)
	require.NoError(t, err)
	_, err = env.reactions.ToggleLike(ctx, first, alice)
	require.NoError(t, err)
	_, err = env.posts.CreateComment(ctx, first, bob, strPtr("nice"))
	require.NoError(t, err)
	_, err = env.posts.CreateComment(ctx, second, alice, strPtr("hi"))
	require.NoError(t, err)

	items, err := env.feed.GetFeed(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, []string{third, second, first}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "Alice", *items[0].AuthorName)
	assert.Equal(t, "Bob", *items[1].AuthorName)

	assert.EqualValues(t, 0, items[0].LikesCount)
	assert.EqualValues(t, 1, items[1].CommentsCount)
	assert.EqualValues(t, 2, items[2].LikesCount)
	assert.EqualValues(t, 1, items[2].CommentsCount)

	t.Run("limit", func(t *testing.T) {
		items, err := env.feed.GetFeed(ctx, 2)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, third, items[0].ID)
	})

	t.Run("counts follow toggles", func(t *testing.T) {
		_, err := env.reactions.ToggleLike(ctx, first, bob)
		require.NoError(t, err)

		items, err := env.feed.GetFeed(ctx, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, items[2].LikesCount)
	})

	t.Run("store failure", func(t *testing.T) {
		env.store.failWith = errBoom{}
		defer func() { env.store.failWith = nil }()

		_, err := env.feed.GetFeed(ctx, 10)
		assert.ErrorIs(t, err, errBoom{})
		assert.ErrorContains(t, err, "error loading feed")
	})
}

func TestGetFeed_Empty(t *testing.T) {
	env := newTestEnv(t)
	items, err := env.feed.GetFeed(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
