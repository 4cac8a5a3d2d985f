package services

import (
	"log/slog"
	"sync"

	pubnub "github.com/pubnub/go"

	"eventhive/models"
)

// EventsListener receives the full event snapshot after every mutation.
type EventsListener func(events []models.Event)

type subscriber struct {
	id int
	fn EventsListener
}

// Notifier fans the current event snapshot out to subscribers,
// synchronously and in registration order. When a PubNub client is
// configured, a change signal is also broadcast to the configured channel
// after local dispatch, best-effort.
type Notifier struct {
	mu          sync.Mutex
	nextID      int
	subscribers []subscriber
	current     []models.Event

	pubnub  *pubnub.PubNub
	channel string
}

func NewNotifier(pn *pubnub.PubNub, channel string) *Notifier {
	return &Notifier{
		current: []models.Event{},
		pubnub:  pn,
		channel: channel,
	}
}

// Subscribe registers the listener, immediately invokes it once with the
// current snapshot, and returns an unsubscribe function. Unsubscribing
// while a publish is in flight is safe; the in-flight delivery may still
// reach the removed listener.
func (n *Notifier) Subscribe(fn EventsListener) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subscribers = append(n.subscribers, subscriber{id: id, fn: fn})
	snapshot := n.current
	n.mu.Unlock()

	fn(snapshot)

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i := range n.subscribers {
			if n.subscribers[i].id == id {
				n.subscribers = append(n.subscribers[:i], n.subscribers[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the same snapshot to every current subscriber. One
// mutation produces one notification; there is no coalescing.
func (n *Notifier) Publish(snapshot []models.Event) {
	n.mu.Lock()
	n.current = snapshot
	subs := make([]subscriber, len(n.subscribers))
	copy(subs, n.subscribers)
	n.mu.Unlock()

	for _, s := range subs {
		s.fn(snapshot)
	}

	if n.pubnub == nil {
		return
	}
	_, _, err := n.pubnub.Publish().
		Channel(n.channel).
		Message(map[string]any{
			"type":  "events_changed",
			"count": len(snapshot),
		}).
		Execute()
	if err != nil {
		slog.Warn("pubnub broadcast failed", "channel", n.channel, "error", err)
	}
}
