// Package pointer is the host-wide pointer event hub. Hosts feed raw events into a Bus;
// gestures subscribe for exactly as long as they need them.
package pointer

// Listener receives pointer events delivered to the whole window, not to a single widget.
type Listener interface {
	PointerMove(x float64)
	PointerUp(x float64)
	// PointerLost is delivered when capture is lost (pointer left the window, focus changed,
	// or the host aborted the gesture).
	PointerLost()
}

// Source hands out scoped subscriptions. The returned release func is idempotent.
type Source interface {
	Subscribe(l Listener) (release func())
}

// Bus is a Source driven synchronously by the host event loop. It is not safe for concurrent
// use; events are delivered in the order the host calls Move/Up/Lost.
type Bus struct {
	subs   []*subscription
	nextID int
}

type subscription struct {
	id int
	l  Listener
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe(l Listener) func() {
	b.nextID++
	sub := &subscription{id: b.nextID, l: l}
	b.subs = append(b.subs, sub)
	released := false
	return func() {
		if released {
			return
		}
		released = true
		b.remove(sub.id)
	}
}

func (b *Bus) remove(id int) {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Active is the number of live subscriptions.
func (b *Bus) Active() int { return len(b.subs) }

func (b *Bus) Move(x float64) {
	for _, s := range b.snapshot() {
		if b.live(s.id) {
			s.l.PointerMove(x)
		}
	}
}

func (b *Bus) Up(x float64) {
	for _, s := range b.snapshot() {
		if b.live(s.id) {
			s.l.PointerUp(x)
		}
	}
}

func (b *Bus) Lost() {
	for _, s := range b.snapshot() {
		if b.live(s.id) {
			s.l.PointerLost()
		}
	}
}

// Listeners may release themselves (or others) mid-dispatch, so dispatch walks a copy and
// skips anything released since the copy was taken.
func (b *Bus) snapshot() []*subscription {
	out := make([]*subscription, len(b.subs))
	copy(out, b.subs)
	return out
}

func (b *Bus) live(id int) bool {
	for _, s := range b.subs {
		if s.id == id {
			return true
		}
	}
	return false
}
