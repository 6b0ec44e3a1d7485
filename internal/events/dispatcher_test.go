package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherDeliversToAllSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var first, second []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		first = append(first, event)
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		second = append(second, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 7})
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, int64(7), first[0].TicketID)
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var delivered int
	dispatcher.Subscribe(EventTicketCommented, func(context.Context, Event) error {
		return errors.New("handler blew up")
	})
	dispatcher.Subscribe(EventTicketCommented, func(context.Context, Event) error {
		delivered++
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCommented})
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var delivered int
	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		delivered++
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated})
	require.NoError(t, err)
	assert.Zero(t, delivered)
}
