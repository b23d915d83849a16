// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"sync"

	"github.com/votexhq/votex/models"
)

// subscriberBuffer is the per-subscriber event backlog. A subscriber that
// falls further behind than this starts losing events.
const subscriberBuffer = 16

// Broadcaster fans tally events out to per-election subscribers. Delivery is
// best-effort: a slow subscriber drops events rather than stalling the
// publisher or its siblings.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan models.TallyEvent
	nextID int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[int]chan models.TallyEvent),
	}
}

// Subscribe registers interest in one election's events and returns the
// event channel plus an unsubscribe function. Unsubscribe closes the channel
// and is safe to call more than once.
func (b *Broadcaster) Subscribe(electionID string) (<-chan models.TallyEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.TallyEvent, subscriberBuffer)
	id := b.nextID
	b.nextID++

	if b.subs[electionID] == nil {
		b.subs[electionID] = make(map[int]chan models.TallyEvent)
	}
	b.subs[electionID][id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := b.subs[electionID][id]; !ok {
			return
		}
		delete(b.subs[electionID], id)
		if len(b.subs[electionID]) == 0 {
			delete(b.subs, electionID)
		}
		close(ch)
	}

	return ch, unsubscribe
}

// Publish delivers an event to every subscriber of its election. Sends are
// non-blocking: a full subscriber buffer drops the event for that subscriber
// only. Publishing with no subscribers is a no-op.
func (b *Broadcaster) Publish(event models.TallyEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[event.ElectionID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers an election currently has.
func (b *Broadcaster) SubscriberCount(electionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs[electionID])
}
