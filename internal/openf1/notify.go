package openf1

import (
	"sync"
	"time"
)

// Notifier surfaces fetch failures to the user.
type Notifier interface {
	Warn(endpoint string, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(endpoint string, err error)

// Warn calls f.
func (f NotifierFunc) Warn(endpoint string, err error) { f(endpoint, err) }

// Warning is one surfaced fetch failure.
type Warning struct {
	Endpoint string    `json:"endpoint"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

func (w Warning) String() string {
	return "Could not fetch " + w.Endpoint + ": " + w.Message
}

const defaultWarningLimit = 50

// Warnings collects failures in a bounded buffer, newest last.
type Warnings struct {
	mu    sync.Mutex
	items []Warning
	total int
	limit int
}

// NewWarnings returns an empty collector.
func NewWarnings() *Warnings {
	return &Warnings{limit: defaultWarningLimit}
}

// Warn records a failure.
func (w *Warnings) Warn(endpoint string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, Warning{Endpoint: endpoint, Message: err.Error(), At: time.Now()})
	if len(w.items) > w.limit {
		w.items = w.items[len(w.items)-w.limit:]
	}
	w.total++
}

// List returns a copy of the buffered warnings.
func (w *Warnings) List() []Warning {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Warning, len(w.items))
	copy(out, w.items)
	return out
}

// Last returns the most recent warning.
func (w *Warnings) Last() (Warning, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.items) == 0 {
		return Warning{}, false
	}
	return w.items[len(w.items)-1], true
}

// Total counts every warning ever recorded, including evicted ones.
func (w *Warnings) Total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// Drain returns and clears the buffered warnings.
func (w *Warnings) Drain() []Warning {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.items
	w.items = nil
	return out
}

// Multi fans a warning out to several notifiers.
type Multi []Notifier

// Warn forwards to every non-nil notifier.
func (m Multi) Warn(endpoint string, err error) {
	for _, n := range m {
		if n != nil {
			n.Warn(endpoint, err)
		}
	}
}
