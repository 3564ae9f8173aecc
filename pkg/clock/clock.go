// Package clock abstrae la hora actual para que los casos de uso sean deterministas en tests.
package clock

import (
	"sync"
	"time"
)

// Clock entrega la hora actual.
type Clock interface {
	Now() time.Time
}

// System usa el reloj del sistema.
type System struct{}

// Now implementa Clock.
func (System) Now() time.Time { return time.Now() }

// Fixed es un reloj manual para tests; seguro para uso concurrente.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed construye un reloj detenido en t.
func NewFixed(t time.Time) *Fixed { return &Fixed{now: t} }

// Now implementa Clock.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set mueve el reloj a t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance adelanta el reloj d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
