package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = ContextWithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}

func TestRouteHolder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Nil(t, RouteHolderFromContext(ctx))
	assert.Empty(t, RouteFromContext(ctx))

	holder := &RouteHolder{}
	ctx = ContextWithRouteHolder(ctx, holder)
	holder.Name = "entity.node.canonical"

	assert.Equal(t, "entity.node.canonical", RouteFromContext(ctx))
}

func TestElapsedTime(t *testing.T) {
	t.Parallel()

	assert.Zero(t, ElapsedTime(context.Background()))

	ctx := ContextWithStartTime(context.Background(), time.Now().Add(-time.Second))
	assert.GreaterOrEqual(t, ElapsedTime(ctx), time.Second)
	assert.False(t, StartTimeFromContext(ctx).IsZero())
}
