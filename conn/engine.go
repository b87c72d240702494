package conn

import (
	"time"

	"github.com/axmq/mqttcore/alias"
	"github.com/axmq/mqttcore/encoding"
	"github.com/axmq/mqttcore/inflight"
	"github.com/axmq/mqttcore/packetid"
	"github.com/axmq/mqttcore/stream"
)

// DefaultReceiveMaximum is the MQTT-mandated default Receive Maximum when
// a peer does not advertise one.
const DefaultReceiveMaximum uint16 = 65535

type offlinePublish struct {
	pkt encoding.Packet
}

// Engine is the sans-I/O connection core. The zero value is not usable;
// construct one with New.
type Engine struct {
	role    Role
	handler Handler

	version Version
	status  Status

	pidMgr    *packetid.Manager
	store     *inflight.Store
	sendAlias *alias.SendTable
	recvAlias *alias.RecvTable
	parser    *stream.Parser

	qos2Handled    map[uint16]struct{}
	qos2Processing map[uint16]struct{}

	publishSendMax   uint16
	publishSendCount uint16
	publishRecvMax   uint16
	publishRecvCount uint16

	offlineQueue []offlinePublish

	peerMaxPacketSize uint32 // 0 = unlimited
	ownMaxPacketSize  uint32 // 0 = unlimited

	clientID   string
	cleanStart bool

	pingreqRecvDuration time.Duration // armed by onConnectRecv*, reused by keep-alive resets

	// knobs; SetXxx must be called before the first Send/Recv.
	offlinePublishEnabled     bool
	autoPubResponse           bool
	autoPingResponse          bool
	autoMapTopicAliasSend     bool
	autoReplaceTopicAliasSend bool
	pingreqSendInterval       time.Duration
	pingrespRecvTimeout       time.Duration

	// event queue: emit() appends, drain() runs to completion and is
	// re-entrancy safe — a nested emit from inside a Handler callback is
	// simply appended and picked up by the outermost drain loop.
	queue    []func()
	draining bool
}

// New constructs an Engine for the given role, reporting events to h.
func New(role Role, h Handler) *Engine {
	return &Engine{
		role:                role,
		handler:             h,
		version:             VersionUndetermined,
		status:              StatusDisconnected,
		pidMgr:              packetid.NewManager(),
		store:               inflight.NewStore(),
		sendAlias:           alias.NewSendTable(),
		recvAlias:           alias.NewRecvTable(),
		parser:              stream.NewParser(),
		qos2Handled:         make(map[uint16]struct{}),
		qos2Processing:      make(map[uint16]struct{}),
		publishSendMax:      DefaultReceiveMaximum,
		publishRecvMax:      DefaultReceiveMaximum,
		autoPubResponse:     true,
		autoPingResponse:    true,
		pingrespRecvTimeout: 20 * time.Second,
	}
}

// SetPingreqSendInterval overrides the interval used to arm the
// pingreq-send timer, in place of whatever CONNECT/CONNACK negotiated.
func (e *Engine) SetPingreqSendInterval(d time.Duration) {
	e.pingreqSendInterval = d
}

// SetOfflinePublish enables queuing PUBLISH sends while disconnected
// instead of failing them.
func (e *Engine) SetOfflinePublish(enabled bool) {
	e.offlinePublishEnabled = enabled
}

// SetAutoPubResponse enables automatic PUBACK/PUBREC/PUBCOMP generation
// on the inbound path.
func (e *Engine) SetAutoPubResponse(enabled bool) {
	e.autoPubResponse = enabled
}

// SetAutoPingResponse enables automatic PINGRESP generation on receipt
// of PINGREQ (server side).
func (e *Engine) SetAutoPingResponse(enabled bool) {
	e.autoPingResponse = enabled
}

// SetAutoMapTopicAliasSend enables automatically assigning a topic alias
// to outbound PUBLISHes that don't already carry one (v5 only).
func (e *Engine) SetAutoMapTopicAliasSend(enabled bool) {
	e.autoMapTopicAliasSend = enabled
}

// SetAutoReplaceTopicAliasSend enables substituting an already-mapped
// alias for outbound PUBLISHes whose topic matches one (v5 only).
func (e *Engine) SetAutoReplaceTopicAliasSend(enabled bool) {
	e.autoReplaceTopicAliasSend = enabled
}

// SetPingrespRecvTimeout overrides how long the engine waits for
// PINGRESP after sending PINGREQ before treating it as a keep-alive
// timeout.
func (e *Engine) SetPingrespRecvTimeout(d time.Duration) {
	e.pingrespRecvTimeout = d
}

// ProtocolVersion reports the negotiated protocol version.
func (e *Engine) ProtocolVersion() Version {
	return e.version
}

// ConnectionStatus reports the current connection lifecycle state.
func (e *Engine) ConnectionStatus() Status {
	return e.status
}

// emit queues fn for delivery. Called from within packet-processing
// logic instead of invoking e.handler directly, so ordering is preserved
// across re-entrant calls.
func (e *Engine) emit(fn func()) {
	e.queue = append(e.queue, fn)
}

// drain runs every queued event to completion. It is a no-op when called
// re-entrantly (draining is already true higher up the call stack); the
// outermost call keeps looping until the queue is empty even if handlers
// append more events while running.
func (e *Engine) drain() {
	if e.draining {
		return
	}
	e.draining = true
	defer func() { e.draining = false }()
	for len(e.queue) > 0 {
		fn := e.queue[0]
		e.queue = e.queue[1:]
		fn()
	}
}

func (e *Engine) emitError(err error) {
	e.emit(func() { e.handler.OnError(err) })
}

func (e *Engine) emitSend(wire []byte, releasePID *uint16) {
	e.emit(func() { e.handler.OnSend(wire, releasePID) })
}

func (e *Engine) emitReceive(pkt encoding.Packet) {
	e.emit(func() { e.handler.OnReceive(pkt) })
}

func (e *Engine) emitTimerOp(op TimerOp, kind TimerKind, d time.Duration) {
	e.emit(func() { e.handler.OnTimerOp(op, kind, d) })
}

func (e *Engine) emitClose() {
	e.status = StatusDisconnected
	e.emit(func() { e.handler.OnClose() })
}

func (e *Engine) releasePacketID(id uint16) {
	if id == 0 {
		return
	}
	e.pidMgr.Release(id)
	e.emit(func() { e.handler.OnPacketIDRelease(id) })
}
