package client

import (
	"errors"
	"sync"

	"paperback/internal/domain"
	"paperback/internal/realtime"
)

// StockUpdate is one stock.updated event as seen by the watcher.
type StockUpdate struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
	Title string `json:"title"`
}

// Subscriber manages channel membership on the realtime connection.
type Subscriber interface {
	Subscribe(channel string) error
	Unsubscribe(channel string) error
}

// StockWatcher keeps exactly one subscription per displayed book. SetBooks
// replaces the displayed set; the watcher subscribes to what is new,
// releases what left the screen, and merges incoming events into its
// snapshot so the view always shows the freshest stock.
type StockWatcher struct {
	mu      sync.Mutex
	sub     Subscriber
	books   map[string]domain.Book
	tracked []string

	// OnUpdate fires after an event changes a displayed book.
	OnUpdate func(domain.Book)
	// OnError collects subscribe/unsubscribe failures; the watcher keeps going.
	OnError func(error)
}

func NewStockWatcher(sub Subscriber) *StockWatcher {
	return &StockWatcher{sub: sub, books: make(map[string]domain.Book)}
}

// SetBooks replaces the displayed set with the latest server snapshot and
// reconciles subscriptions to match it. A book that fails to subscribe is
// not tracked, so a later SetBooks with the same snapshot retries it.
func (w *StockWatcher) SetBooks(books []domain.Book) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]string, 0, len(books))
	next := make(map[string]domain.Book, len(books))
	for _, b := range books {
		if _, dup := next[b.ID]; dup {
			continue
		}
		next[b.ID] = b
		ids = append(ids, b.ID)
	}

	toSub, toUnsub := Reconcile(ids, w.tracked)

	kept := w.tracked[:0]
	for _, id := range w.tracked {
		if _, still := next[id]; still {
			kept = append(kept, id)
		}
	}
	w.tracked = kept

	for _, id := range toUnsub {
		if err := w.sub.Unsubscribe(realtime.ProductChannel(id)); err != nil {
			w.reportLocked(err)
		}
	}
	for _, id := range toSub {
		if err := w.sub.Subscribe(realtime.ProductChannel(id)); err != nil {
			w.reportLocked(err)
			delete(next, id)
			continue
		}
		w.tracked = append(w.tracked, id)
	}
	w.books = next
}

// Apply merges one event into the snapshot. Events for books no longer on
// screen are ignored, and replaying the same event is harmless.
func (w *StockWatcher) Apply(u StockUpdate) {
	w.mu.Lock()
	b, ok := w.books[u.ID]
	if !ok {
		w.mu.Unlock()
		return
	}
	b.Stock = u.Stock
	if u.Title != "" {
		b.Title = u.Title
	}
	w.books[u.ID] = b
	cb := w.OnUpdate
	w.mu.Unlock()

	if cb != nil {
		cb(b)
	}
}

// Books returns the current snapshot in display order.
func (w *StockWatcher) Books() []domain.Book {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Book, 0, len(w.tracked))
	for _, id := range w.tracked {
		if b, ok := w.books[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Tracked returns the ids with live subscriptions.
func (w *StockWatcher) Tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.tracked))
	copy(out, w.tracked)
	return out
}

// Close releases every tracked subscription. Each channel gets an attempt
// even when earlier ones fail.
func (w *StockWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for _, id := range w.tracked {
		if err := w.sub.Unsubscribe(realtime.ProductChannel(id)); err != nil {
			errs = append(errs, err)
		}
	}
	w.tracked = nil
	w.books = make(map[string]domain.Book)
	return errors.Join(errs...)
}

func (w *StockWatcher) reportLocked(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}
