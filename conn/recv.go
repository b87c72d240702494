package conn

import (
	"time"

	"github.com/axmq/mqttcore/alias"
	"github.com/axmq/mqttcore/encoding"
	"github.com/axmq/mqttcore/errs"
)

// Recv feeds newly-arrived bytes through the stream parser and applies
// every complete packet found. A non-nil return means the byte stream
// itself was unrecoverable (the 5th remaining-length continuation
// byte); the engine has already emitted on_error (and, on v5, a
// DISCONNECT) and the caller must stop feeding this connection.
func (e *Engine) Recv(data []byte) error {
	frames, ferr := e.parser.Feed(data)
	for _, f := range frames {
		e.handleFrame(f.Data)
	}
	if ferr != nil {
		e.handleMalformed(ferr)
	}
	e.drain()
	return ferr
}

func (e *Engine) handleFrame(raw []byte) {
	pkt, err := e.decodeFrame(raw)
	if err != nil {
		e.handleMalformed(err)
		return
	}
	e.handlePacket(pkt)
}

// handleMalformed implements spec.md §7's malformed-input class: emit
// on_error, and on v5 while connected/connecting also emit a DISCONNECT
// carrying the mapped reason code, then close.
func (e *Engine) handleMalformed(err error) {
	rc := encoding.GetReasonCode(err)
	e.emitError(errs.Malformed(err, rc))
	e.disconnectAndClose(rc)
}

func (e *Engine) disconnectAndClose(rc encoding.ReasonCode) {
	if e.version == Version5 && (e.status == StatusConnected || e.status == StatusConnecting) {
		dpkt, derr := encoding.NewDisconnectPacket(rc, encoding.Properties{})
		if derr != nil {
			dpkt, derr = encoding.NewDisconnectPacket(encoding.ReasonUnspecifiedError, encoding.Properties{})
		}
		if derr == nil {
			_ = e.sendPacket(dpkt)
			return
		}
	}
	e.status = StatusDisconnecting
	e.emitClose()
}

func (e *Engine) handlePacket(pkt encoding.Packet) {
	pt := pkt.PacketType()

	if !roleAllowsRecv(e.role, pt) {
		e.emitError(errs.Malformed(errs.ErrWrongRole, encoding.ReasonProtocolError))
		e.disconnectAndClose(encoding.ReasonProtocolError)
		return
	}
	if !statusAllowsRecv(e.status, pt) {
		e.emitError(errs.Malformed(errs.ErrWrongStatus, encoding.ReasonProtocolError))
		e.disconnectAndClose(encoding.ReasonProtocolError)
		return
	}

	if e.role == RoleServer && pt != encoding.CONNECT && e.pingreqRecvDuration > 0 {
		e.emitTimerOp(TimerOpReset, TimerPingreqRecv, e.pingreqRecvDuration)
	}

	switch p := pkt.(type) {
	case *encoding.ConnectPacket:
		e.onConnectRecvV5(p)
	case *encoding.ConnectPacket311:
		e.onConnectRecv311(p)
	case *encoding.ConnackPacket:
		e.onConnackRecv(p.ReasonCode < 0x80)
		e.emitReceive(p)
	case *encoding.ConnackPacket311:
		e.onConnackRecv(p.ReturnCode == 0)
		e.emitReceive(p)
	case *encoding.PublishPacket:
		e.onPublishRecvV5(p)
	case *encoding.PublishPacket311:
		e.onPublishRecv311(p)
	case *encoding.PubackPacket:
		e.emitReceive(p)
		e.onPubackRecv(p.PacketID)
	case *encoding.PubackPacket311:
		e.emitReceive(p)
		e.onPubackRecv(p.PacketID)
	case *encoding.PubrecPacket:
		e.emitReceive(p)
		e.onPubrecRecv(p.PacketID, p.ReasonCode < 0x80)
	case *encoding.PubrecPacket311:
		e.emitReceive(p)
		e.onPubrecRecv(p.PacketID, true)
	case *encoding.PubrelPacket:
		e.emitReceive(p)
		e.onPubrelRecv(p.PacketID)
	case *encoding.PubrelPacket311:
		e.emitReceive(p)
		e.onPubrelRecv(p.PacketID)
	case *encoding.PubcompPacket:
		e.emitReceive(p)
		e.onPubcompRecv(p.PacketID)
	case *encoding.PubcompPacket311:
		e.emitReceive(p)
		e.onPubcompRecv(p.PacketID)
	case *encoding.SubackPacket:
		e.emitReceive(p)
		e.releasePacketID(p.PacketID)
	case *encoding.SubackPacket311:
		e.emitReceive(p)
		e.releasePacketID(p.PacketID)
	case *encoding.UnsubackPacket:
		e.emitReceive(p)
		e.releasePacketID(p.PacketID)
	case *encoding.UnsubackPacket311:
		e.emitReceive(p)
		e.releasePacketID(p.PacketID)
	case *encoding.PingreqPacket:
		e.emitReceive(p)
		e.onPingreqRecv()
	case *encoding.PingrespPacket:
		e.emitReceive(p)
		e.onPingrespRecv()
	case *encoding.DisconnectPacket:
		e.emitReceive(p)
		e.onDisconnectRecv()
	case *encoding.DisconnectPacket311:
		e.emitReceive(p)
		e.onDisconnectRecv()
	default:
		// SUBSCRIBE, UNSUBSCRIBE, AUTH: no engine-side bookkeeping beyond
		// delivery to the host.
		e.emitReceive(pkt)
	}
}

func (e *Engine) onConnectRecvV5(p *encoding.ConnectPacket) {
	e.version = Version5
	e.clientID = p.ClientID
	e.cleanStart = p.CleanStart
	e.status = StatusConnecting
	e.armPingreqRecv(p.KeepAlive)
	e.emitReceive(p)
}

func (e *Engine) onConnectRecv311(p *encoding.ConnectPacket311) {
	e.version = Version311
	e.clientID = p.ClientID
	e.cleanStart = p.CleanSession
	e.status = StatusConnecting
	e.armPingreqRecv(p.KeepAlive)
	e.emitReceive(p)
}

func (e *Engine) armPingreqRecv(keepAlive uint16) {
	if keepAlive == 0 {
		return
	}
	e.pingreqRecvDuration = time.Duration(float64(keepAlive)*1.5) * time.Second
	e.emitTimerOp(TimerOpSet, TimerPingreqRecv, e.pingreqRecvDuration)
}

func (e *Engine) onConnackRecv(success bool) {
	if success {
		e.status = StatusConnected
		return
	}
	e.status = StatusDisconnecting
	e.emitClose()
}

func (e *Engine) resolvePublishAlias(p *encoding.PublishPacket) error {
	aliasID, hasAlias := p.TopicAlias()
	if !hasAlias {
		return nil
	}
	if p.TopicName != "" {
		return e.recvAlias.Set(aliasID, p.TopicName)
	}
	topic, ok := e.recvAlias.Resolve(aliasID)
	if !ok {
		return alias.ErrAliasOutOfRange
	}
	p.TopicName = topic
	return nil
}

func (e *Engine) onPublishRecvV5(p *encoding.PublishPacket) {
	if err := e.resolvePublishAlias(p); err != nil {
		e.emitError(errs.Malformed(err, encoding.ReasonTopicAliasInvalid))
		e.disconnectAndClose(encoding.ReasonTopicAliasInvalid)
		return
	}

	qos := p.FixedHeader.QoS
	switch qos {
	case encoding.QoS0:
		e.emitReceive(p)
	case encoding.QoS1:
		e.emitReceive(p)
		if e.autoPubResponse {
			if ack, err := encoding.NewPubackPacket(p.PacketID, encoding.ReasonSuccess, encoding.Properties{}); err == nil {
				_ = e.sendPacket(ack)
			}
		}
	case encoding.QoS2:
		_, duplicate := e.qos2Handled[p.PacketID]
		if !duplicate {
			e.qos2Handled[p.PacketID] = struct{}{}
			e.emitReceive(p)
		}
		if e.autoPubResponse {
			if ack, err := encoding.NewPubrecPacket(p.PacketID, encoding.ReasonSuccess, encoding.Properties{}); err == nil {
				_ = e.sendPacket(ack)
			}
		}
	}
}

func (e *Engine) onPublishRecv311(p *encoding.PublishPacket311) {
	qos := p.FixedHeader.QoS
	switch qos {
	case encoding.QoS0:
		e.emitReceive(p)
	case encoding.QoS1:
		e.emitReceive(p)
		if e.autoPubResponse {
			if ack, err := encoding.NewPubackPacket311(p.PacketID); err == nil {
				_ = e.sendPacket(ack)
			}
		}
	case encoding.QoS2:
		_, duplicate := e.qos2Handled[p.PacketID]
		if !duplicate {
			e.qos2Handled[p.PacketID] = struct{}{}
			e.emitReceive(p)
		}
		if e.autoPubResponse {
			if ack, err := encoding.NewPubrecPacket311(p.PacketID); err == nil {
				_ = e.sendPacket(ack)
			}
		}
	}
}

// onPubackRecv and onPubcompRecv both erase the matching inflight store
// entry and release the packet id: PUBACK completes a QoS1 exchange,
// PUBCOMP completes a QoS2 exchange.
func (e *Engine) onPubackRecv(packetID uint16) {
	if _, ok := e.store.Get(packetID); ok && e.publishSendCount > 0 {
		e.publishSendCount--
	}
	e.store.Remove(packetID)
	delete(e.qos2Processing, packetID)
	e.releasePacketID(packetID)
	e.drainOfflineQueue()
}

func (e *Engine) onPubcompRecv(packetID uint16) {
	if _, ok := e.store.Get(packetID); ok && e.publishSendCount > 0 {
		e.publishSendCount--
	}
	e.store.Remove(packetID)
	delete(e.qos2Processing, packetID)
	e.releasePacketID(packetID)
	e.drainOfflineQueue()
}

// onPubrecRecv rewrites the stored QoS2 PUBLISH into a PUBREL awaiting
// PUBCOMP, per spec.md §4.5. A failure reason code (>=0x80) erases the
// exchange instead, since the peer has declined to continue it.
func (e *Engine) onPubrecRecv(packetID uint16, success bool) {
	if !success {
		if _, ok := e.store.Get(packetID); ok && e.publishSendCount > 0 {
			e.publishSendCount--
		}
		e.store.Remove(packetID)
		delete(e.qos2Processing, packetID)
		e.releasePacketID(packetID)
		return
	}
	delete(e.qos2Processing, packetID)
	var rel encoding.Packet
	if e.version == Version5 {
		rel, _ = encoding.NewPubrelPacket(packetID, encoding.ReasonSuccess, encoding.Properties{})
	} else {
		rel, _ = encoding.NewPubrelPacket311(packetID)
	}
	if rel == nil {
		return
	}
	_ = e.sendPacket(rel)
}

// onPubrelRecv completes the inbound QoS2 exchange: auto-respond with
// PUBCOMP and drop the duplicate-suppression entry, since the packet id
// is now free to be reused by the peer.
func (e *Engine) onPubrelRecv(packetID uint16) {
	delete(e.qos2Handled, packetID)
	if !e.autoPubResponse {
		return
	}
	var comp encoding.Packet
	if e.version == Version5 {
		comp, _ = encoding.NewPubcompPacket(packetID, encoding.ReasonSuccess, encoding.Properties{})
	} else {
		comp, _ = encoding.NewPubcompPacket311(packetID)
	}
	if comp != nil {
		_ = e.sendPacket(comp)
	}
}

func (e *Engine) onPingreqRecv() {
	if !e.autoPingResponse {
		return
	}
	_ = e.sendPacket(encoding.NewPingrespPacket())
}

func (e *Engine) onPingrespRecv() {
	e.emitTimerOp(TimerOpCancel, TimerPingrespRecv, 0)
}

func (e *Engine) onDisconnectRecv() {
	e.status = StatusDisconnecting
	e.emitClose()
}

// drainOfflineQueue flushes PUBLISHes queued while disconnected, now
// that an ack freed a slot under publish_send_max.
func (e *Engine) drainOfflineQueue() {
	if e.status != StatusConnected || len(e.offlineQueue) == 0 {
		return
	}
	queue := e.offlineQueue
	e.offlineQueue = nil
	for _, item := range queue {
		switch p := item.pkt.(type) {
		case *encoding.PublishPacket:
			_ = e.sendPublishV5(p)
		case *encoding.PublishPacket311:
			_ = e.sendPublish311(p)
		}
	}
}
