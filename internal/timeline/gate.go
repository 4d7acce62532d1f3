package timeline

import "sync/atomic"

// Gate admits at most one fetch at a time.
type Gate struct {
	held     atomic.Bool
	onChange func(inFlight bool)
}

// NewGate returns a gate that reports state changes to onChange, which may be nil.
func NewGate(onChange func(inFlight bool)) *Gate {
	return &Gate{onChange: onChange}
}

// TryAcquire marks the gate held. It returns false, without side effects,
// when a fetch is already in flight.
func (g *Gate) TryAcquire() bool {
	if !g.held.CompareAndSwap(false, true) {
		return false
	}
	g.notify(true)
	return true
}

// Release must be called once per successful TryAcquire on every exit path.
func (g *Gate) Release() {
	if !g.held.CompareAndSwap(true, false) {
		return
	}
	g.notify(false)
}

func (g *Gate) InFlight() bool {
	return g.held.Load()
}

func (g *Gate) notify(inFlight bool) {
	if g.onChange != nil {
		g.onChange(inFlight)
	}
}
