package session

// guard is a reentrancy token. The engine is single-threaded, so this is
// not a lock: it detects a decoder callback synchronously re-entering the
// poll that invoked it, which would corrupt buffer state mid-use. Acquire
// on entry, release on every exit path (via defer).
type guard struct {
	active bool
}

func (g *guard) tryAcquire() bool {
	if g.active {
		return false
	}
	g.active = true
	return true
}

func (g *guard) release() {
	g.active = false
}
