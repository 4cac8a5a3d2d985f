package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhive/models"
)

func TestNotifier_Subscribe_ImmediateCallback(t *testing.T) {
	notifier := NewNotifier(nil, "")
	notifier.Publish([]models.Event{{ID: "event-1"}})

	var received [][]models.Event
	unsubscribe := notifier.Subscribe(func(events []models.Event) {
		received = append(received, events)
	})
	defer unsubscribe()

	// Registration delivers the current snapshot before any mutation.
	require.Len(t, received, 1)
	require.Len(t, received[0], 1)
	assert.Equal(t, "event-1", received[0][0].ID)
}

func TestNotifier_Publish_DeliversInRegistrationOrder(t *testing.T) {
	notifier := NewNotifier(nil, "")

	var order []string
	notifier.Subscribe(func([]models.Event) { order = append(order, "first") })
	notifier.Subscribe(func([]models.Event) { order = append(order, "second") })
	order = nil

	notifier.Publish([]models.Event{{ID: "event-1"}})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestNotifier_Publish_OneNotificationPerMutation(t *testing.T) {
	notifier := NewNotifier(nil, "")

	calls := 0
	notifier.Subscribe(func([]models.Event) { calls++ })

	notifier.Publish(nil)
	notifier.Publish(nil)
	notifier.Publish(nil)

	// One initial delivery plus one per publish, no coalescing.
	assert.Equal(t, 4, calls)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	notifier := NewNotifier(nil, "")

	calls := 0
	unsubscribe := notifier.Subscribe(func([]models.Event) { calls++ })
	require.Equal(t, 1, calls)

	unsubscribe()
	notifier.Publish(nil)

	assert.Equal(t, 1, calls)

	// Unsubscribing twice is harmless.
	unsubscribe()
}

func TestNotifier_UnsubscribeDuringNotify(t *testing.T) {
	notifier := NewNotifier(nil, "")

	var unsubscribeSecond func()
	firstCalls, secondCalls := 0, 0

	notifier.Subscribe(func([]models.Event) {
		firstCalls++
		if unsubscribeSecond != nil {
			unsubscribeSecond()
		}
	})
	unsubscribeSecond = notifier.Subscribe(func([]models.Event) { secondCalls++ })

	// The in-flight delivery may still reach the removed listener; later
	// publishes must not.
	notifier.Publish(nil)
	inFlight := secondCalls

	notifier.Publish(nil)
	assert.Equal(t, inFlight, secondCalls)
	assert.Equal(t, 3, firstCalls)
}
