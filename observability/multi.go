package observability

import "context"

// MultiObserver forwards each event to every member in registration order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver combines observers. Nil and NoOpObserver members are
// dropped and nested MultiObservers are flattened, so wrapping an observer
// that already fans out does not deliver events twice through extra layers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	m := &MultiObserver{observers: make([]Observer, 0, len(observers))}
	for _, obs := range observers {
		m.add(obs)
	}
	return m
}

func (m *MultiObserver) add(obs Observer) {
	switch o := obs.(type) {
	case nil, NoOpObserver, *NoOpObserver:
	case *MultiObserver:
		if o != nil {
			for _, inner := range o.observers {
				m.add(inner)
			}
		}
	default:
		m.observers = append(m.observers, obs)
	}
}

// Len reports the number of observers events are forwarded to.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
