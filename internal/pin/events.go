package pin

import "sync"

// Event names published by the core.
const (
	EventPinToggled      = "pin-toggled"
	EventOpacityChanged  = "opacity-changed"
	EventWindowDestroyed = "window-destroyed"
	EventPinError        = "pin-error"
)

// Event is a named notification with a typed payload, delivered to the UI
// event sink (IPC subscribers, daemon log).
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// PinToggledPayload accompanies EventPinToggled.
type PinToggledPayload struct {
	IsPinned    bool   `json:"is_pinned"`
	Title       string `json:"title"`
	ProcessName string `json:"process_name"`
}

// OpacityChangedPayload accompanies EventOpacityChanged.
type OpacityChangedPayload struct {
	Percent uint8 `json:"percent"`
}

// PinErrorPayload accompanies EventPinError.
type PinErrorPayload struct {
	Message string `json:"message"`
}

// Notifier receives core events. Implementations must not block.
type Notifier interface {
	Emit(Event)
}

// Bus fans events out to subscribers over buffered channels. Publishing
// never blocks: a subscriber that falls behind loses events rather than
// stalling registry or reinforcement paths.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus returns an event bus with no subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Emit delivers an event to all current subscribers, dropping it for any
// subscriber whose buffer is full.
func (b *Bus) Emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new subscriber with the given buffer size and
// returns its channel plus a cancel function. Cancel closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
