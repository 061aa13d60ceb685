package revalidate

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for invalidation message")
		return Message{}
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	hub.Publish("list:categories", "detail:category:web-dev", "home")

	msg := receive(t, ch)
	assert.Equal(t, []string{"list:categories", "detail:category:web-dev", "home"}, msg.Keys)
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	first := hub.Subscribe()
	second := hub.Subscribe()
	defer hub.Unsubscribe(first)
	defer hub.Unsubscribe(second)

	hub.Publish("list:posts")

	assert.Equal(t, []string{"list:posts"}, receive(t, first).Keys)
	assert.Equal(t, []string{"list:posts"}, receive(t, second).Keys)
}

func TestPublishWithoutKeysIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	hub.Publish()

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ch := hub.Subscribe()

	hub.Unsubscribe(ch)

	_, open := <-ch
	require.False(t, open)

	// Publishing after unsubscribe must not panic on the closed channel.
	hub.Publish("home")
	time.Sleep(50 * time.Millisecond)
}
