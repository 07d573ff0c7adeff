// Package observable provides a reactive value cell: a current value plus
// change notification, independent of any rendering framework.
package observable

import "sync"

// Value holds a current value and notifies subscribers on every Set.
// Subscribers are called synchronously, outside the internal lock, in
// subscription order.
type Value[T any] struct {
	mu     sync.Mutex
	value  T
	nextID uint64
	subs   map[uint64]func(T)
	order  []uint64
}

// New creates a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set replaces the current value and notifies subscribers.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	v.value = value
	fns := v.snapshotLocked()
	v.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Update applies fn to the current value under the lock. When fn reports a
// change the result is stored and subscribers are notified.
func (v *Value[T]) Update(fn func(T) (T, bool)) bool {
	v.mu.Lock()
	next, changed := fn(v.value)
	if !changed {
		v.mu.Unlock()
		return false
	}
	v.value = next
	fns := v.snapshotLocked()
	v.mu.Unlock()

	for _, f := range fns {
		f(next)
	}
	return true
}

// Subscribe registers fn for change notifications. The returned function
// removes the subscription; calling it more than once is harmless.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.subs == nil {
		v.subs = make(map[uint64]func(T))
	}
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.order = append(v.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			delete(v.subs, id)
			for i, oid := range v.order {
				if oid == id {
					v.order = append(v.order[:i], v.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (v *Value[T]) snapshotLocked() []func(T) {
	fns := make([]func(T), 0, len(v.order))
	for _, id := range v.order {
		fns = append(fns, v.subs[id])
	}
	return fns
}
