package requestid

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UniqueNonEmpty(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
}

func TestFromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := ToContext(context.Background(), "req-1")
	assert.Equal(t, "req-1", FromContext(ctx))
}

func TestFromContext_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FromContext(context.Background()))
}

func TestFromContext_ConcurrentContextsDoNotInterfere(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := New()
			ctx := ToContext(context.Background(), id)
			if got := FromContext(ctx); got != id {
				t.Errorf("request id mismatch: got %q want %q", got, id)
			}
		}()
	}
	wg.Wait()
}
