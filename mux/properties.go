package mux

import (
	"fmt"
	"sort"
	"sync"
)

// Properties is the per-request bag routes use to hand data to later
// routes in the same chain. Values keep the type they were stored with;
// typed reads never convert.
type Properties struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewProperties returns an empty bag.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]any)}
}

// Set stores v under key, replacing any previous value and its type.
func (p *Properties) Set(key string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[key] = v
}

// Get returns the raw value stored under key.
func (p *Properties) Get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is set.
func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Delete removes key from the bag.
func (p *Properties) Delete(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.values, key)
}

// Keys returns the stored keys in sorted order.
func (p *Properties) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Len returns the number of stored keys.
func (p *Properties) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.values)
}

// String reads key as a string.
func (p *Properties) String(key string) (string, error) {
	return GetAs[string](p, key)
}

// Int reads key as an int.
func (p *Properties) Int(key string) (int, error) {
	return GetAs[int](p, key)
}

// Bool reads key as a bool.
func (p *Properties) Bool(key string) (bool, error) {
	return GetAs[bool](p, key)
}

// GetAs reads key as a T. It returns a *PropertyError wrapping
// ErrPropertyNotFound when the key is absent and ErrPropertyType when the
// stored value is not a T.
func GetAs[T any](p *Properties, key string) (T, error) {
	var zero T

	v, ok := p.Get(key)
	if !ok {
		return zero, &PropertyError{Key: key, Want: typeName[T](), Err: ErrPropertyNotFound}
	}

	t, ok := v.(T)
	if !ok {
		return zero, &PropertyError{
			Key:  key,
			Want: typeName[T](),
			Got:  fmt.Sprintf("%T", v),
			Err:  ErrPropertyType,
		}
	}

	return t, nil
}

// MustGetAs is GetAs for values a handler knows were set earlier in the
// chain. It panics on error, which the server turns into a 500 response.
func MustGetAs[T any](p *Properties, key string) T {
	v, err := GetAs[T](p, key)
	if err != nil {
		panic(err)
	}

	return v
}

func typeName[T any]() string {
	var zero T
	if name := fmt.Sprintf("%T", zero); name != "<nil>" {
		return name
	}

	return fmt.Sprintf("%T", (*T)(nil))[1:]
}
