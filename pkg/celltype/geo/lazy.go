package geo

import "sync"

// Lazy defers registry construction to first use and performs it at
// most once, even with concurrent callers.
type Lazy struct {
	once sync.Once
	load func() (*Registry, error)
	reg  *Registry
	err  error
}

// NewLazy wraps a load function.
func NewLazy(load func() (*Registry, error)) *Lazy {
	return &Lazy{load: load}
}

// Get returns the registry, loading it on the first call. A failed load
// is not retried.
func (l *Lazy) Get() (*Registry, error) {
	l.once.Do(func() {
		l.reg, l.err = l.load()
	})
	return l.reg, l.err
}

// Expand resolves name through the registry, loading it first if needed.
// A registry that failed to load knows no places.
func (l *Lazy) Expand(name string) (string, bool) {
	reg, err := l.Get()
	if err != nil {
		return "", false
	}
	return reg.Expand(name)
}
