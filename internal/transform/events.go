package transform

// EventKind identifies what changed in an Engine.
type EventKind int

const (
	// TransformChanged is published when the image→device matrix differs
	// from its value before the mutating call.
	TransformChanged EventKind = iota
	// Flipped is published after every flip, carrying the new flip pair.
	Flipped
	// Rotated is published when the rotation actually changed. Persistence
	// collaborators rotate the backing file by RotationDelta.
	Rotated
	// ScaleChanged is published on every zoom input with the effective
	// scale relative to fit-to-window.
	ScaleChanged
)

func (k EventKind) String() string {
	switch k {
	case TransformChanged:
		return "transform_changed"
	case Flipped:
		return "flipped"
	case Rotated:
		return "rotated"
	case ScaleChanged:
		return "scale_changed"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners synchronously on the goroutine that
// mutated the Engine.
type Event struct {
	Kind          EventKind `json:"kind"`
	Matrix        Matrix    `json:"matrix"`
	Rotation      int       `json:"rotation"`
	RotationDelta int       `json:"rotation_delta,omitempty"`
	FlippedX      bool      `json:"flipped_x"`
	FlippedY      bool      `json:"flipped_y"`
	ScaleValue    float64   `json:"scale_value"`
}

// Listener receives Engine events.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l and returns a function that removes it again.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, subscription{id: id, fn: l})
	return func() {
		for i, s := range e.listeners {
			if s.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) publish(kind EventKind, delta int) {
	ev := Event{
		Kind:          kind,
		Matrix:        e.matrix,
		Rotation:      e.rotation,
		RotationDelta: delta,
		FlippedX:      e.flipX < 0,
		FlippedY:      e.flipY < 0,
		ScaleValue:    e.ScaleValue(),
	}
	// Copy so a listener may unsubscribe while being called.
	subs := append([]subscription(nil), e.listeners...)
	for _, s := range subs {
		s.fn(ev)
	}
}
