package service

// mirrorState tracks where an optimistic toggle is in its lifecycle.
type mirrorState int

const (
	// mirrorSynced means the mirrored count matches the store.
	mirrorSynced mirrorState = iota
	// mirrorPending means a provisional delta has been applied and the
	// store write is in flight.
	mirrorPending
	// mirrorReverting means the store write failed and the provisional
	// delta is being rolled back.
	mirrorReverting
)

// counterMirror holds the provisional delta for one in-flight toggle. The
// count shown to the caller is base+delta while pending; commit replaces it
// with the authoritative store value and revert discards the delta.
type counterMirror struct {
	state mirrorState
	base  int
	delta int
}

func newCounterMirror(base, delta int) *counterMirror {
	return &counterMirror{state: mirrorPending, base: base, delta: delta}
}

// Provisional returns the optimistic count while the write is in flight.
func (m *counterMirror) Provisional() int {
	v := m.base + m.delta
	if v < 0 {
		v = 0
	}
	return v
}

// Commit resolves the toggle with the authoritative count from the store.
func (m *counterMirror) Commit(authoritative int) {
	m.base = authoritative
	m.delta = 0
	m.state = mirrorSynced
}

// Revert rolls the provisional delta back after a failed store write.
func (m *counterMirror) Revert() {
	m.state = mirrorReverting
	m.delta = 0
	m.state = mirrorSynced
}
