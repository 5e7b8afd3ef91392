package app

import (
	"sync"

	"vocab-drill-service/internal/domain"
	"vocab-drill-service/internal/quiz"
)

// Workspace is a loaded user's in-memory state. The record store is only
// consulted once; afterwards the workspace is authoritative.
type Workspace struct {
	username string

	mu            sync.Mutex
	record        domain.UserRecord
	book          *quiz.Book
	activeSession string
	subscribers   map[chan domain.Deck]struct{}

	// pending is the next snapshot to save; writing is set while a writer
	// goroutine drains it. dirty records that the last save failed.
	pending *domain.UserRecord
	writing bool
	dirty   bool
}

func newWorkspace(record domain.UserRecord) *Workspace {
	return &Workspace{
		username:    record.Username,
		record:      record,
		book:        quiz.NewBook(record),
		subscribers: make(map[chan domain.Deck]struct{}),
	}
}

func (w *Workspace) subscribe() (<-chan domain.Deck, func()) {
	ch := make(chan domain.Deck, 8)

	w.mu.Lock()
	w.subscribers[ch] = struct{}{}
	initial := w.deckLocked()
	w.mu.Unlock()

	ch <- initial

	cancel := func() {
		w.mu.Lock()
		if _, ok := w.subscribers[ch]; ok {
			delete(w.subscribers, ch)
			close(ch)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

func (w *Workspace) hasSubscribers() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subscribers) > 0
}

// settledLocked reports whether the record store holds the latest state.
func (w *Workspace) settledLocked() bool {
	return !w.writing && w.pending == nil && !w.dirty
}

func (w *Workspace) broadcastLocked() domain.Deck {
	deck := w.deckLocked()
	for ch := range w.subscribers {
		select {
		case ch <- deck:
		default:
			// slow subscriber: replace its stale deck with the latest one
			select {
			case <-ch:
			default:
			}
			ch <- deck
		}
	}
	return deck
}

func (w *Workspace) deckLocked() domain.Deck {
	return quiz.BuildDeck(w.username, w.book)
}

func (w *Workspace) snapshotLocked() domain.UserRecord {
	return w.book.Snapshot(w.record)
}
