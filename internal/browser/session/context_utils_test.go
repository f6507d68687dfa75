// internal/browser/session/context_utils_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey string

const targetKey ctxKey = "target"

func TestCombineContext(t *testing.T) {
	t.Run("values come from the tab context", func(t *testing.T) {
		tab := context.WithValue(context.Background(), targetKey, "tab-1")
		op := context.WithValue(context.Background(), targetKey, "ignored")

		combined, cancel := CombineContext(tab, op)
		defer cancel()

		assert.Equal(t, "tab-1", combined.Value(targetKey))
		assert.NoError(t, combined.Err())
	})

	t.Run("tab context canceled", func(t *testing.T) {
		tab, cancelTab := context.WithCancel(context.Background())
		combined, cancel := CombineContext(tab, context.Background())
		defer cancel()

		cancelTab()
		<-combined.Done()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})

	t.Run("operation deadline cancels the combination", func(t *testing.T) {
		tab, cancelTab := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelTab()
		op, cancelOp := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancelOp()

		combined, cancel := CombineContext(tab, op)
		defer cancel()

		select {
		case <-combined.Done():
		case <-time.After(time.Second):
			t.Fatal("combined context outlived the operation deadline")
		}
		assert.ErrorIs(t, op.Err(), context.DeadlineExceeded)
		// The combination is canceled by the watcher, so it reports Canceled.
		assert.ErrorIs(t, combined.Err(), context.Canceled)
		assert.NoError(t, tab.Err(), "the tab context must survive an operation timeout")
	})

	t.Run("deadline inherited from tab context", func(t *testing.T) {
		deadline := time.Now().Add(time.Minute)
		tab, cancelTab := context.WithDeadline(context.Background(), deadline)
		defer cancelTab()

		combined, cancel := CombineContext(tab, context.Background())
		defer cancel()

		got, ok := combined.Deadline()
		require.True(t, ok)
		assert.True(t, got.Equal(deadline))
	})

	t.Run("explicit cancel", func(t *testing.T) {
		combined, cancel := CombineContext(context.Background(), context.Background())
		cancel()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})
}

func TestDetach(t *testing.T) {
	parent, cancelParent := context.WithTimeout(context.WithValue(context.Background(), targetKey, "v"), 20*time.Millisecond)
	detached := Detach(parent)

	cancelParent()
	<-parent.Done()

	assert.Equal(t, "v", detached.Value(targetKey))
	assert.NoError(t, detached.Err())
	assert.Nil(t, detached.Done())
	_, ok := detached.Deadline()
	assert.False(t, ok)

	child, cancelChild := context.WithCancel(detached)
	defer cancelChild()
	assert.NoError(t, child.Err(), "children of a detached context start live")
}
