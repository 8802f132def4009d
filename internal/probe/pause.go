package probe

import (
	"sync"
	"time"
)

// Pauser is a pause gate shared by the workers of a run. While paused,
// Wait blocks; a worker already inside a request is not interrupted.
type Pauser struct {
	mu          sync.Mutex
	cond        *sync.Cond
	paused      bool
	pausedSince time.Time
	totalPaused time.Duration
}

// NewPauser returns a gate in the running state.
func NewPauser() *Pauser {
	p := &Pauser{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Wait blocks while the gate is paused.
func (p *Pauser) Wait() {
	p.mu.Lock()
	for p.paused {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// Toggle flips the gate and reports whether it is now paused.
func (p *Pauser) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		p.resumeLocked()
	} else {
		p.paused = true
		p.pausedSince = time.Now()
	}
	return p.paused
}

// Resume opens the gate if it is paused. It is a no-op otherwise.
func (p *Pauser) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		p.resumeLocked()
	}
}

func (p *Pauser) resumeLocked() {
	p.totalPaused += time.Since(p.pausedSince)
	p.paused = false
	p.cond.Broadcast()
}

func (p *Pauser) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// PausedDuration is the total time spent paused, including a pause that
// is still running. The runner subtracts it from the elapsed time.
func (p *Pauser) PausedDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.totalPaused
	if p.paused {
		d += time.Since(p.pausedSince)
	}
	return d
}
