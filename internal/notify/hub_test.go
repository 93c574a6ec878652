package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "business:42", BusinessChannel(42))
	assert.Equal(t, "qr:abc-123", QRChannel("abc-123"))
}

func TestEmitReachesSubscribers(t *testing.T) {
	h := NewHub(zap.NewNop())
	a := h.Subscribe("business:1")
	b := h.Subscribe("business:1")
	defer h.Unsubscribe("business:1", a)
	defer h.Unsubscribe("business:1", b)

	h.Emit("business:1", "new-order", map[string]interface{}{"order_id": uint(9)})

	for _, ch := range []chan Event{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, "new-order", ev.Event)
			assert.Equal(t, uint(9), ev.Payload["order_id"])
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestEmitIsChannelScoped(t *testing.T) {
	h := NewHub(zap.NewNop())
	other := h.Subscribe("business:2")
	defer h.Unsubscribe("business:2", other)

	h.Emit("business:1", "new-order", nil)

	select {
	case <-other:
		t.Fatal("event leaked across channels")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(zap.NewNop())
	ch := h.Subscribe("business:1")
	defer h.Unsubscribe("business:1", ch)

	// Overfill the buffer; Emit must return without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			h.Emit("business:1", "new-order", nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a slow subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(zap.NewNop())
	ch := h.Subscribe("qr:code-1")
	require.Equal(t, 1, h.SubscriberCount("qr:code-1"))

	h.Unsubscribe("qr:code-1", ch)
	assert.Equal(t, 0, h.SubscriberCount("qr:code-1"))
	_, open := <-ch
	assert.False(t, open)

	// Double unsubscribe is safe
	h.Unsubscribe("qr:code-1", ch)
}
