// Package syncsignal tells open storefront pages that the catalog changed so they
// re-fetch. Pages share no memory with the admin controller; a signal carries at most a
// hint of what changed and receivers always re-read the store.
package syncsignal

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ridloal/storefront-sync/internal/product/domain"
)

type Kind string

const (
	// KindStorage mirrors a write of one persisted category key.
	KindStorage Kind = "storage"
	// KindProductsUpdated carries the per-category counts after a mutation.
	KindProductsUpdated Kind = "productsUpdated"
	// KindRemoteChanged is a row change pushed by the remote backing.
	KindRemoteChanged Kind = "remoteChanged"
	// KindFocus is raised by a page regaining focus.
	KindFocus Kind = "focus"
)

type Signal struct {
	Kind   Kind            `json:"kind"`
	Key    string          `json:"key,omitempty"`
	Value  json.RawMessage `json:"newValue,omitempty"`
	Counts *domain.Counts  `json:"counts,omitempty"`
}

// ChangeNotifier is implemented by the local Broadcaster and the RemoteNotifier so the
// storefront code path does not depend on the backing.
type ChangeNotifier interface {
	// Subscribe returns a signal channel and an idempotent cancel func. A subscriber that
	// falls behind by more than buffer signals misses the overflow.
	Subscribe(buffer int) (<-chan Signal, func())
	// Publish is called after every successful mutation with the full collection.
	Publish(ctx context.Context, products []domain.Product) error
	Close() error
}

// hub fans signals out to subscriber channels without ever blocking the sender.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Signal
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan Signal)}
}

func (h *hub) subscribe(buffer int) (<-chan Signal, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Signal, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *hub) broadcast(sig Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- sig:
		default:
			// re-fetch is idempotent, a dropped signal only delays it
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Feed is a standalone fan-out for signals raised outside a backing, such as page focus.
type Feed struct {
	h *hub
}

func NewFeed() *Feed {
	return &Feed{h: newHub()}
}

func (f *Feed) Subscribe(buffer int) (<-chan Signal, func()) {
	return f.h.subscribe(buffer)
}

func (f *Feed) Send(sig Signal) {
	f.h.broadcast(sig)
}

func (f *Feed) Close() {
	f.h.close()
}
