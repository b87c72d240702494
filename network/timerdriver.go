package network

import (
	"sync"
	"time"

	"github.com/axmq/mqttcore/conn"
)

// TimerDriver is the real clock a conn.Engine never owns itself: spec.md's
// "host owns timers" rule (see conn.TimerKind) means the one genuinely
// I/O-bound piece of keep-alive handling — a goroutine parked on a
// time.Timer — lives here instead of in the engine. It's the same
// ticker-per-connection shape keepalive.go used for the ping/pong loop,
// generalized from one fixed interval to the three timer kinds the engine
// can independently set, reset, and cancel per connection.
type TimerDriver struct {
	mu      sync.Mutex
	engines map[string]*conn.Engine
	timers  map[string]map[conn.TimerKind]*time.Timer
}

// NewTimerDriver constructs an empty TimerDriver. A single driver can back
// every Endpoint a Listener accepts; timers are keyed by connection id.
func NewTimerDriver() *TimerDriver {
	return &TimerDriver{
		engines: make(map[string]*conn.Engine),
		timers:  make(map[string]map[conn.TimerKind]*time.Timer),
	}
}

func (d *TimerDriver) bind(connID string, e *conn.Engine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engines[connID] = e
	d.timers[connID] = make(map[conn.TimerKind]*time.Timer)
}

// set arms or re-arms the named timer for a connection, replacing whatever
// was previously scheduled for that kind.
func (d *TimerDriver) set(connID string, kind conn.TimerKind, duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kinds, ok := d.timers[connID]
	if !ok {
		return
	}

	if existing, ok := kinds[kind]; ok {
		existing.Stop()
	}

	kinds[kind] = time.AfterFunc(duration, func() {
		d.fire(connID, kind)
	})
}

// cancel stops the named timer for a connection, if one is armed.
func (d *TimerDriver) cancel(connID string, kind conn.TimerKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kinds, ok := d.timers[connID]
	if !ok {
		return
	}

	if existing, ok := kinds[kind]; ok {
		existing.Stop()
		delete(kinds, kind)
	}
}

func (d *TimerDriver) fire(connID string, kind conn.TimerKind) {
	d.mu.Lock()
	e, ok := d.engines[connID]
	if ok {
		delete(d.timers[connID], kind)
	}
	d.mu.Unlock()

	if ok {
		e.NotifyTimerFired(kind)
	}
}

// release cancels every timer armed for a connection and forgets it. Called
// once an Endpoint's transport goes away (Serve returning, or OnClose).
func (d *TimerDriver) release(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range d.timers[connID] {
		t.Stop()
	}

	delete(d.timers, connID)
	delete(d.engines, connID)
}
