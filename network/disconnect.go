package network

import (
	"context"
	"sync"
	"time"

	"github.com/axmq/mqttcore/encoding"
)

// DisconnectHandler observes a disconnect after it has been sent (or, for an
// inbound DISCONNECT, delivered) to a given endpoint.
type DisconnectHandler func(*Endpoint, *encoding.DisconnectPacket)

// DisconnectManager sends server-initiated DISCONNECT packets through a
// conn.Engine and notifies any registered observers once that's done.
// Reason codes are encoding.ReasonCode directly — the wire engine already
// owns that vocabulary, so there is no separate enum to keep in sync with
// encoding's.
type DisconnectManager struct {
	mu              sync.RWMutex
	handlers        []DisconnectHandler
	gracefulTimeout time.Duration
}

func NewDisconnectManager(gracefulTimeout time.Duration) *DisconnectManager {
	if gracefulTimeout == 0 {
		gracefulTimeout = 5 * time.Second
	}

	return &DisconnectManager{
		handlers:        make([]DisconnectHandler, 0),
		gracefulTimeout: gracefulTimeout,
	}
}

func (dm *DisconnectManager) OnDisconnect(handler DisconnectHandler) {
	dm.mu.Lock()
	dm.handlers = append(dm.handlers, handler)
	dm.mu.Unlock()
}

func (dm *DisconnectManager) notify(ep *Endpoint, packet *encoding.DisconnectPacket) {
	dm.mu.RLock()
	handlers := make([]DisconnectHandler, len(dm.handlers))
	copy(handlers, dm.handlers)
	dm.mu.RUnlock()

	for _, handler := range handlers {
		handler(ep, packet)
	}
}

// SendDisconnect pushes a DISCONNECT through ep's engine — the engine emits
// the wire bytes via Endpoint.OnSend and moves to StatusDisconnecting — then
// runs the registered observers.
func (dm *DisconnectManager) SendDisconnect(ep *Endpoint, reason encoding.ReasonCode, props encoding.Properties) error {
	packet, err := encoding.NewDisconnectPacket(reason, props)
	if err != nil {
		return err
	}

	if err := ep.Engine().Send(packet); err != nil {
		return err
	}

	dm.notify(ep, packet)
	return nil
}

// GracefulDisconnect sends reason, then closes the transport once the engine
// has finished emitting it (or after gracefulTimeout, whichever is first).
func (dm *DisconnectManager) GracefulDisconnect(ctx context.Context, ep *Endpoint, reason encoding.ReasonCode) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, dm.gracefulTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		if err := dm.SendDisconnect(ep, reason, encoding.Properties{}); err != nil {
			done <- err
			return
		}
		done <- ep.Connection().Close()
	}()

	select {
	case err := <-done:
		return err
	case <-timeoutCtx.Done():
		_ = ep.Connection().Close()
		return ErrGracefulShutdownTimeout
	}
}

// GracefulShutdown disconnects every endpoint a Pool holds with
// ReasonServerShuttingDown, in parallel, bounded by an overall timeout.
type GracefulShutdown struct {
	pool    *Pool
	dm      *DisconnectManager
	timeout time.Duration

	mu       sync.Mutex
	shutdown bool
}

func NewGracefulShutdown(pool *Pool, dm *DisconnectManager, timeout time.Duration) *GracefulShutdown {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &GracefulShutdown{
		pool:    pool,
		dm:      dm,
		timeout: timeout,
	}
}

// Shutdown disconnects every endpoint currently registered with eps — a
// connection id -> Endpoint lookup the caller maintains alongside the Pool
// (the Pool itself only tracks transport Connections, not engines).
func (gs *GracefulShutdown) Shutdown(ctx context.Context, eps map[string]*Endpoint) error {
	gs.mu.Lock()
	if gs.shutdown {
		gs.mu.Unlock()
		return nil
	}
	gs.shutdown = true
	gs.mu.Unlock()

	timeoutCtx, cancel := context.WithTimeout(ctx, gs.timeout)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	gs.pool.ForEach(func(c *Connection) bool {
		ep, ok := eps[c.ID()]
		if !ok {
			return true
		}

		wg.Add(1)
		go func(e *Endpoint) {
			defer wg.Done()

			if err := gs.dm.GracefulDisconnect(timeoutCtx, e, encoding.ReasonServerShuttingDown); err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		}(ep)

		return true
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case err := <-errCh:
		return err
	case <-timeoutCtx.Done():
		return ErrGracefulShutdownTimeout
	}
}

func (gs *GracefulShutdown) IsShutdown() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.shutdown
}
