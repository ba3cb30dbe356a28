package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := New()

	ch, unsubscribe := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Len())

	unsubscribe()
	assert.Equal(t, 0, n.Len())

	_, open := <-ch
	assert.False(t, open, "channel is closed after unsubscribe")

	assert.NotPanics(t, unsubscribe, "unsubscribe is idempotent")
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()

	ch1, unsubscribe1 := n.Subscribe()
	ch2, unsubscribe2 := n.Subscribe()
	defer unsubscribe1()
	defer unsubscribe2()

	assert.Equal(t, 2, n.Broadcast())

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d did not receive broadcast", i+1)
		}
	}
}

func TestNotifier_BroadcastCoalesces(t *testing.T) {
	n := New()

	ch, unsubscribe := n.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		n.Broadcast()
		n.Broadcast()
		n.Broadcast()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Broadcast blocked on a full subscriber")
	}

	<-ch
	select {
	case <-ch:
		t.Error("pending pings should be coalesced")
	default:
	}
}

func TestNotifier_BroadcastWithoutSubscribers(t *testing.T) {
	assert.Equal(t, 0, New().Broadcast())
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, unsubscribe := n.Subscribe()
			n.Broadcast()
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			n.Broadcast()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Len())
}
