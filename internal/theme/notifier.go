package theme

import (
	"sync"

	"github.com/google/uuid"
)

type subscription struct {
	id uuid.UUID
	fn func()
}

// Notifier is an in-process Source. The host drives it with SetDark; every
// change is delivered synchronously, in registration order, on the caller's
// goroutine.
type Notifier struct {
	mu   sync.Mutex
	dark bool
	subs []subscription
}

var _ Source = (*Notifier)(nil)

// NewNotifier creates a notifier with the given initial state.
func NewNotifier(dark bool) *Notifier {
	return &Notifier{dark: dark}
}

func (n *Notifier) IsDark() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dark
}

func (n *Notifier) Subscribe(fn func()) func() {
	id := uuid.New()

	n.mu.Lock()
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	n.mu.Unlock()

	return func() { n.remove(id) }
}

// Len returns the number of live registrations.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// SetDark records the theme state and notifies subscribers if it changed.
func (n *Notifier) SetDark(dark bool) {
	n.mu.Lock()
	if n.dark == dark {
		n.mu.Unlock()
		return
	}
	n.dark = dark
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	// Callbacks run unlocked so they may subscribe or dispose.
	for _, s := range subs {
		s.fn()
	}
}

func (n *Notifier) remove(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}
