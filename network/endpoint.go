package network

import (
	"sync"
	"time"

	"github.com/axmq/mqttcore/conn"
	"github.com/axmq/mqttcore/encoding"
)

// ReceiveHandler is invoked for every application packet the engine
// delivers to the host (conn.Handler.OnReceive).
type ReceiveHandler func(*Endpoint, encoding.Packet)

// ErrorHandler is invoked for every error the engine reports
// (conn.Handler.OnError) — malformed input, disallowed local actions,
// or a transport-loss error the read loop itself observed.
type ErrorHandler func(*Endpoint, error)

// CloseHandler is invoked once the engine has moved to StatusDisconnected.
type CloseHandler func(*Endpoint)

// EndpointConfig wires an Endpoint's callbacks and timer driver. Callbacks
// may be nil; a nil ReceiveHandler silently drops inbound packets, a nil
// ErrorHandler/CloseHandler is simply not invoked.
type EndpointConfig struct {
	Role      conn.Role
	OnReceive ReceiveHandler
	OnError   ErrorHandler
	OnClose   CloseHandler
	Timers    *TimerDriver
	ReadSize  int
}

// Endpoint binds a network.Connection to a conn.Engine: it is the sans-I/O
// core's host. It owns the read loop that feeds bytes into the engine,
// implements conn.Handler to turn engine events into real socket writes and
// real timers, and is the one place protocol state and transport state meet.
type Endpoint struct {
	conn   *Connection
	engine *conn.Engine

	onReceive ReceiveHandler
	onError   ErrorHandler
	onClose   CloseHandler

	timers   *TimerDriver
	readSize int

	mu     sync.Mutex
	closed bool
}

// NewEndpoint constructs an Endpoint over an already-accepted or
// already-dialed transport connection. The returned Endpoint's Engine is
// usable immediately; call Serve to start the read loop.
func NewEndpoint(c *Connection, cfg *EndpointConfig) *Endpoint {
	if cfg == nil {
		cfg = &EndpointConfig{}
	}

	readSize := cfg.ReadSize
	if readSize <= 0 {
		readSize = 4096
	}

	ep := &Endpoint{
		conn:      c,
		onReceive: cfg.OnReceive,
		onError:   cfg.OnError,
		onClose:   cfg.OnClose,
		timers:    cfg.Timers,
		readSize:  readSize,
	}

	ep.engine = conn.New(cfg.Role, ep)

	if ep.timers != nil {
		ep.timers.bind(ep.conn.ID(), ep.engine)
	}

	return ep
}

// Engine returns the sans-I/O core this endpoint drives. Callers use it to
// issue Send, SetOfflinePublish, GetStoredPackets/RestorePackets and the
// other accessors session.Manager needs across a reconnect.
func (ep *Endpoint) Engine() *conn.Engine {
	return ep.engine
}

// Connection returns the underlying transport connection.
func (ep *Endpoint) Connection() *Connection {
	return ep.conn
}

// Serve runs the read loop until the connection closes or Recv reports an
// unrecoverable stream error. It blocks; callers run it in its own
// goroutine per accepted/dialed connection, the way Listener.handleConnection
// does for every ConnectionHandler.
func (ep *Endpoint) Serve() error {
	buf := make([]byte, ep.readSize)

	for {
		n, err := ep.conn.Read(buf)
		if n > 0 {
			if recvErr := ep.engine.Recv(buf[:n]); recvErr != nil {
				ep.teardown()
				return recvErr
			}
		}

		if err != nil {
			ep.engine.NotifyClosed()
			ep.teardown()
			return err
		}
	}
}

func (ep *Endpoint) teardown() {
	if ep.timers != nil {
		ep.timers.release(ep.conn.ID())
	}
	_ = ep.conn.Close()
}

// OnError implements conn.Handler.
func (ep *Endpoint) OnError(err error) {
	if ep.onError != nil {
		ep.onError(ep, err)
	}
}

// OnSend implements conn.Handler: it writes wire bytes to the transport and,
// per the Handler contract, releases the packet id back to the engine if the
// write fails.
func (ep *Endpoint) OnSend(wire []byte, releasePacketID *uint16) {
	if _, err := ep.conn.Write(wire); err != nil {
		if releasePacketID != nil {
			ep.engine.ReleasePacketID(*releasePacketID)
		}
		ep.OnError(err)
	}
}

// OnPacketIDRelease implements conn.Handler. An Endpoint has no packet-id
// bookkeeping of its own; a host that needs to react to releases (metrics,
// a rate limiter) wraps OnReceive/OnSend instead of this hook.
func (ep *Endpoint) OnPacketIDRelease(id uint16) {}

// OnReceive implements conn.Handler.
func (ep *Endpoint) OnReceive(packet encoding.Packet) {
	if ep.onReceive != nil {
		ep.onReceive(ep, packet)
	}
}

// OnTimerOp implements conn.Handler by delegating to the bound TimerDriver.
// An Endpoint built with a nil TimerDriver silently ignores timer requests —
// callers that need keep-alive/ping enforcement must supply one.
func (ep *Endpoint) OnTimerOp(op conn.TimerOp, kind conn.TimerKind, duration time.Duration) {
	if ep.timers == nil {
		return
	}

	switch op {
	case conn.TimerOpSet, conn.TimerOpReset:
		ep.timers.set(ep.conn.ID(), kind, duration)
	case conn.TimerOpCancel:
		ep.timers.cancel(ep.conn.ID(), kind)
	}
}

// OnClose implements conn.Handler.
func (ep *Endpoint) OnClose() {
	ep.mu.Lock()
	if ep.closed {
		ep.mu.Unlock()
		return
	}
	ep.closed = true
	ep.mu.Unlock()

	if ep.timers != nil {
		ep.timers.release(ep.conn.ID())
	}
	if ep.onClose != nil {
		ep.onClose(ep)
	}
}
