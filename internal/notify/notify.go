// Package notify is the one-to-many status channel the workflows publish
// their action text through. Subscribers come and go at any time.
package notify

import "sync"

const subscriberBuffer = 16

type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan string
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan string)}
}

// Subscribe registers a new subscriber and returns its id and channel. The
// channel is closed on Unsubscribe.
func (b *Bus) Subscribe() (int, <-chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ch := make(chan string, subscriberBuffer)
	b.subs[b.nextID] = ch
	return b.nextID, ch
}

func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the status to every subscriber registered right now
// before returning. A subscriber whose buffer is full misses the update
// rather than stalling the workflow.
func (b *Bus) Publish(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- status:
		default:
		}
	}
}
