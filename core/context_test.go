package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely read concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	ctx = withRunID(ctx, 12345)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			runID, ok := getRunID(ctx)
			assert.True(t, shouldSuppressHeader(ctx), "goroutine %d", i)
			assert.True(t, ok, "goroutine %d", i)
			assert.Equal(t, int64(12345), runID, "goroutine %d", i)
		})
	}
	wg.Wait()
}

// TestContextIsolation tests that derived contexts do not leak into their parents.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	derived := withRunID(WithSuppressHeader(base), 42)

	assert.False(t, shouldSuppressHeader(base))
	_, ok := getRunID(base)
	assert.False(t, ok)

	assert.True(t, shouldSuppressHeader(derived))
	runID, ok := getRunID(derived)
	assert.True(t, ok)
	assert.Equal(t, int64(42), runID)
}

func TestGetRunIDRejectsUnsetRun(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		ok   bool
	}{
		{"missing", context.Background(), false},
		{"zero", withRunID(context.Background(), 0), false},
		{"wrong type", context.WithValue(context.Background(), runIDKey, "7"), false},
		{"positive", withRunID(context.Background(), 7), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := getRunID(tt.ctx)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
