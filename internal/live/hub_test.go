package live

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesConnectedFirst(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	defer h.Unsubscribe(s.ID)

	ev := <-s.Events
	assert.Equal(t, EventConnected, ev.Type)
	assert.Zero(t, ev.Time)
	assert.Equal(t, 1, h.Len())
}

func TestBroadcastReachesEverySubscriber(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	<-a.Events
	<-b.Events

	now := time.UnixMilli(1700000000000)
	assert.Equal(t, 2, h.Broadcast(UpdateEvent(now)))

	for _, s := range []*Subscriber{a, b} {
		ev := <-s.Events
		assert.Equal(t, EventUpdate, ev.Type)
		assert.Equal(t, int64(1700000000000), ev.Time)
	}
}

func TestLateSubscriberMissesEarlierUpdates(t *testing.T) {
	h := NewHub()
	h.NotifyRatingsChanged()

	s := h.Subscribe()
	assert.Equal(t, EventConnected, (<-s.Events).Type)
	select {
	case ev := <-s.Events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestBroadcastDropsForFullSubscriber(t *testing.T) {
	h := NewHub()
	slow := h.Subscribe() // never drained; holds "connected" already
	for i := 0; i < subscriberBuffer*2; i++ {
		h.NotifyRatingsChanged()
	}
	assert.Equal(t, 0, h.Broadcast(UpdateEvent(time.Now())))
	assert.Len(t, slow.ch, subscriberBuffer)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	h.Unsubscribe(s.ID)
	h.Unsubscribe(s.ID)

	ev, ok := <-s.Events
	require.True(t, ok)
	assert.Equal(t, EventConnected, ev.Type)
	_, ok = <-s.Events
	assert.False(t, ok)
	assert.Equal(t, 0, h.Len())
}

func TestConcurrentSubscribeBroadcastUnsubscribe(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := h.Subscribe()
			h.Unsubscribe(s.ID)
		}()
		go func() {
			defer wg.Done()
			h.NotifyRatingsChanged()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Len())
}
