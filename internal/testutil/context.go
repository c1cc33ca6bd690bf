package testutil

import (
	"context"
	"testing"
)

// ContextWithCancel returns a context.Context whose cancel func is also
// registered as a t.Cleanup, so a test that forgets to call cancel still
// unwinds its background goroutines when the test ends.
func ContextWithCancel(t testing.TB) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx, cancel
}
