// Package notify fans order lifecycle events out to subscribed dashboards
// and kiosk devices over server-sent events. Delivery is best-effort: a slow
// subscriber drops events rather than backpressuring the order path.
package notify

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Event is one pushed message on a channel.
type Event struct {
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

// BusinessChannel names the dashboard channel for one business.
func BusinessChannel(businessID uint) string {
	return fmt.Sprintf("business:%d", businessID)
}

// QRChannel names the kiosk-device channel for one pairing code.
func QRChannel(code string) string {
	return "qr:" + code
}

const subscriberBuffer = 16

// Hub is an in-process publish/subscribe broker keyed by channel name.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
	log  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[chan Event]struct{}),
		log:  log,
	}
}

// Subscribe registers a new subscriber on channel. The returned channel is
// buffered; the caller must drain it and call Unsubscribe when done.
func (h *Hub) Subscribe(channel string) chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[chan Event]struct{})
	}
	h.subs[channel][ch] = struct{}{}
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(channel string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[channel]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(h.subs, channel)
	}
	close(ch)
}

// Emit publishes an event to every subscriber on channel without blocking.
// Subscribers whose buffers are full miss the event.
func (h *Hub) Emit(channel, event string, payload map[string]interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[channel] {
		select {
		case ch <- Event{Event: event, Payload: payload}:
		default:
			h.log.Warn("dropping event for slow subscriber",
				zap.String("channel", channel),
				zap.String("event", event))
		}
	}
}

// SubscriberCount reports the number of active subscribers on channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}
