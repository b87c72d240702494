package conn

import (
	"github.com/axmq/mqttcore/encoding"
	"github.com/axmq/mqttcore/errs"
)

// NotifyTimerFired tells the engine a timer previously armed via
// OnTimerOp has elapsed. The host is the clock; the engine only decides
// what firing means.
func (e *Engine) NotifyTimerFired(kind TimerKind) {
	switch kind {
	case TimerPingreqSend:
		e.firePingreqSend()
	case TimerPingreqRecv, TimerPingrespRecv:
		e.fireKeepAliveTimeout()
	}
	e.drain()
}

func (e *Engine) firePingreqSend() {
	if e.status != StatusConnected {
		return
	}
	_ = e.sendPacket(encoding.NewPingreqPacket())
}

// fireKeepAliveTimeout handles both directions of keep-alive failure:
// the server never heard from the client (pingreq_recv) and the client
// never got PINGRESP back (pingresp_recv). Both end the connection the
// same way.
func (e *Engine) fireKeepAliveTimeout() {
	e.emitError(errs.TransportLoss(errs.ErrNotConnected))
	e.disconnectAndClose(encoding.ReasonKeepAliveTimeout)
}

// NotifyClosed tells the engine the underlying transport is gone. Per
// spec.md §5/§7 this cancels all timers and, for a clean-start session,
// discards the inflight store, packet-id manager and QoS2 dedup state;
// a resumable session keeps them for the next connect.
func (e *Engine) NotifyClosed() {
	e.emitTimerOp(TimerOpCancel, TimerPingreqSend, 0)
	e.emitTimerOp(TimerOpCancel, TimerPingreqRecv, 0)
	e.emitTimerOp(TimerOpCancel, TimerPingrespRecv, 0)

	if e.cleanStart {
		e.store.Clear()
		e.pidMgr.Clear()
		e.qos2Handled = make(map[uint16]struct{})
		e.qos2Processing = make(map[uint16]struct{})
		e.offlineQueue = nil
	}
	e.sendAlias.Clear()
	e.recvAlias.Clear()
	e.publishSendCount = 0
	e.publishRecvCount = 0
	e.version = VersionUndetermined
	e.parser.Reset()

	e.emitClose()
	e.drain()
}
