package atomic

import (
	"go.uber.org/atomic"
)

// storedVal wraps the stored value so that zero values of E can be stored:
// atomic.Value cannot tell "never stored" from "stored nil".
type storedVal[E any] struct {
	val E
}

// Value is a type-safe wrapper around atomic.Value. Readers always observe a
// complete value published by a single Set or Swap.
type Value[E any] struct {
	val *atomic.Value
}

func NewValue[E any]() Value[E] {
	return Value[E]{
		val: &atomic.Value{},
	}
}

// NewValueOf returns a Value already holding initial.
func NewValueOf[E any](initial E) Value[E] {
	v := NewValue[E]()
	v.Set(initial)
	return v
}

// Set atomically stores the given value.
func (c Value[E]) Set(e E) {
	c.val.Store(&storedVal[E]{val: e})
}

// Swap atomically stores the given value and returns the previous one, if any.
func (c Value[E]) Swap(e E) (E, bool) {
	old := c.val.Swap(&storedVal[E]{val: e})
	if old == nil {
		var zero E
		return zero, false
	}
	return old.(*storedVal[E]).val, true
}

// Get returns the stored value, if any, and whether any value was stored.
func (c Value[E]) Get() (E, bool) {
	stored := c.val.Load()
	if stored == nil {
		var ret E
		return ret, false
	}
	return stored.(*storedVal[E]).val, true
}
