package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCache(t *testing.T) {
	cache := NewDashboardCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "admin", map[string]int{"total": 3}))

	var out map[string]int
	hit, err := cache.Get(ctx, "admin", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, out)
	assert.NoError(t, cache.Invalidate(ctx))
}
