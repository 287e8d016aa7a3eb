package splittimer

import "sync/atomic"

// ModalFlag is a goroutine-safe "a modal is showing" flag.
type ModalFlag struct {
	showing atomic.Bool
}

func (m *ModalFlag) IsShowing() bool {
	return m.showing.Load()
}

func (m *ModalFlag) Set(showing bool) {
	m.showing.Store(showing)
}

// Toggle flips the flag and returns the new value.
func (m *ModalFlag) Toggle() bool {
	for {
		old := m.showing.Load()
		if m.showing.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
