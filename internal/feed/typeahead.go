package feed

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet interval before a typeahead lookup fires.
const DefaultDebounce = 300 * time.Millisecond

// Typeahead drives the username suggestion dropdown. Keystrokes are
// debounced; only the last term within the quiet interval triggers a lookup.
// Selecting a suggestion or switching search mode cancels any pending lookup
// and clears the dropdown.
type Typeahead struct {
	mu       sync.Mutex
	debounce time.Duration
	source   func(ctx context.Context, prefix string) ([]string, error)
	emit     func(suggestions []string)

	timer    *time.Timer
	term     string
	selected string
}

// NewTypeahead returns a Typeahead that resolves prefixes through source and
// delivers results through emit. A zero debounce falls back to
// DefaultDebounce.
func NewTypeahead(debounce time.Duration, source func(ctx context.Context, prefix string) ([]string, error), emit func([]string)) *Typeahead {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Typeahead{
		debounce: debounce,
		source:   source,
		emit:     emit,
	}
}

// Input registers a new term. The lookup fires after the debounce interval
// unless another Input, Select, or Reset arrives first. A blank term clears
// the dropdown immediately.
func (t *Typeahead) Input(ctx context.Context, term string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.term = term
	t.selected = ""
	t.stopTimerLocked()

	if term == "" {
		t.emit(nil)
		return
	}

	t.timer = time.AfterFunc(t.debounce, func() {
		t.fire(ctx, term)
	})
}

func (t *Typeahead) fire(ctx context.Context, term string) {
	t.mu.Lock()
	// A newer term superseded this lookup while the timer was pending.
	if t.term != term {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	suggestions, err := t.source(ctx, term)
	if err != nil {
		// Lookup failures just leave the dropdown empty.
		t.emit(nil)
		return
	}
	t.emit(suggestions)
}

// Select records the chosen username and closes the dropdown.
func (t *Typeahead) Select(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopTimerLocked()
	t.term = username
	t.selected = username
	t.emit(nil)
}

// Selected returns the username chosen from the dropdown, or "" if the
// current term was typed rather than selected.
func (t *Typeahead) Selected() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected
}

// Reset clears the term, selection, and dropdown. Called when the search
// mode changes.
func (t *Typeahead) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopTimerLocked()
	t.term = ""
	t.selected = ""
	t.emit(nil)
}

func (t *Typeahead) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
