package utils

import (
	"sync"
)

// OptionalRWMutex guards a Manager when it was created with the synchronized flag. When
// UseMutex is false every method returns immediately, so an unsynchronized manager pays
// nothing for the calls.
type OptionalRWMutex struct {
	mutex    sync.RWMutex
	UseMutex bool
}

// Lock takes the write lock for operations that change the arena or the block list
func (m *OptionalRWMutex) Lock() {
	if m.UseMutex {
		m.mutex.Lock()
	}
}

// Unlock releases the write lock
func (m *OptionalRWMutex) Unlock() {
	if m.UseMutex {
		m.mutex.Unlock()
	}
}

// RLock takes the read lock for accessors and encoders
func (m *OptionalRWMutex) RLock() {
	if m.UseMutex {
		m.mutex.RLock()
	}
}

// RUnlock releases the read lock
func (m *OptionalRWMutex) RUnlock() {
	if m.UseMutex {
		m.mutex.RUnlock()
	}
}
