package conn

import (
	"bytes"
	"time"

	"github.com/axmq/mqttcore/encoding"
	"github.com/axmq/mqttcore/errs"
	"github.com/axmq/mqttcore/inflight"
)

func encodePacket(pkt encoding.Packet) ([]byte, error) {
	var buf bytes.Buffer
	if err := pkt.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Send submits pkt for transmission. On success the engine emits OnSend
// with the wire bytes; on a disallowed local action it emits OnError and
// returns the error without sending anything.
func (e *Engine) Send(pkt encoding.Packet) error {
	err := e.sendPacket(pkt)
	e.drain()
	return err
}

func (e *Engine) sendPacket(pkt encoding.Packet) error {
	pt := pkt.PacketType()

	if !roleAllowsSend(e.role, pt) {
		err := errs.Disallowed(errs.ErrWrongRole)
		e.emitError(err)
		return err
	}
	if !statusAllowsSend(e.status, pt) {
		err := errs.Disallowed(errs.ErrWrongStatus)
		e.emitError(err)
		return err
	}

	switch p := pkt.(type) {
	case *encoding.PublishPacket:
		return e.sendPublishV5(p)
	case *encoding.PublishPacket311:
		return e.sendPublish311(p)
	}

	id, hasID := packetIDOf(pkt)
	locallyOwned := locallyOwnedID(pt)
	if locallyOwned && !e.pidMgr.Allocated(id) {
		err := errs.Disallowed(errs.ErrPacketIDNotAllocated)
		e.emitError(err)
		return err
	}

	wire, err := encodePacket(pkt)
	if err != nil {
		e.emitError(err)
		return err
	}
	if oversizeErr := e.checkPeerMaxSize(wire); oversizeErr != nil {
		e.emitError(oversizeErr)
		return oversizeErr
	}

	if pt == encoding.PUBREL {
		e.store.Insert(inflight.KindPubrel, id, wire)
	}

	e.emitSendWithID(wire, id, hasID && locallyOwned)

	switch pt {
	case encoding.CONNECT:
		e.onConnectSend(pkt)
	case encoding.CONNACK:
		e.onConnackSend(pkt)
	case encoding.PINGREQ:
		if e.pingrespRecvTimeout > 0 {
			e.emitTimerOp(TimerOpSet, TimerPingrespRecv, e.pingrespRecvTimeout)
		}
	case encoding.DISCONNECT:
		e.status = StatusDisconnecting
		e.emitClose()
	}
	return nil
}

func (e *Engine) emitSendWithID(wire []byte, id uint16, hasID bool) {
	if !hasID {
		e.emitSend(wire, nil)
		return
	}
	idCopy := id
	e.emitSend(wire, &idCopy)
}

func (e *Engine) checkPeerMaxSize(wire []byte) error {
	if e.peerMaxPacketSize != 0 && uint32(len(wire)) > e.peerMaxPacketSize {
		return errs.Disallowed(errs.ErrExceedsPeerMaxSize)
	}
	return nil
}

func (e *Engine) onConnectSend(pkt encoding.Packet) {
	e.status = StatusConnecting
	switch p := pkt.(type) {
	case *encoding.ConnectPacket:
		e.version = Version5
		e.clientID = p.ClientID
		e.cleanStart = p.CleanStart
		e.armPingreqSend(p.KeepAlive)
	case *encoding.ConnectPacket311:
		e.version = Version311
		e.clientID = p.ClientID
		e.cleanStart = p.CleanSession
		e.armPingreqSend(p.KeepAlive)
	}
}

func (e *Engine) armPingreqSend(keepAlive uint16) {
	interval := e.pingreqSendInterval
	if interval == 0 && keepAlive > 0 {
		interval = time.Duration(keepAlive) * time.Second
	}
	if interval > 0 {
		e.emitTimerOp(TimerOpSet, TimerPingreqSend, interval)
	}
}

func (e *Engine) onConnackSend(pkt encoding.Packet) {
	success := true
	switch p := pkt.(type) {
	case *encoding.ConnackPacket:
		success = p.ReasonCode < 0x80
	case *encoding.ConnackPacket311:
		success = p.ReturnCode == 0
	}
	if success {
		e.status = StatusConnected
		return
	}
	e.status = StatusDisconnecting
	e.emitClose()
}

// sendPublishV5 implements spec.md §4.6's PUBLISH preconditions and auto
// topic-alias handling for v5.
func (e *Engine) sendPublishV5(p *encoding.PublishPacket) error {
	qos := p.FixedHeader.QoS

	if qos != encoding.QoS0 {
		if p.PacketID == 0 || !e.pidMgr.Allocated(p.PacketID) {
			err := errs.Disallowed(errs.ErrPacketIDNotAllocated)
			e.emitError(err)
			return err
		}
		if e.publishSendMax != 0 && e.publishSendCount >= e.publishSendMax {
			err := errs.Disallowed(errs.ErrPublishSendMaxExceeded)
			e.emitError(err)
			return err
		}
	}

	if e.status != StatusConnected {
		if qos != encoding.QoS0 && e.offlinePublishEnabled {
			e.offlineQueue = append(e.offlineQueue, offlinePublish{pkt: p})
			return nil
		}
		err := errs.Disallowed(errs.ErrOfflineSendDisabled)
		e.emitError(err)
		return err
	}

	originalTopic := p.TopicName
	if originalTopic != "" && e.sendAlias.Enabled() {
		if _, hasAlias := p.TopicAlias(); !hasAlias {
			if a, ok := e.sendAlias.Lookup(originalTopic); ok && e.autoReplaceTopicAliasSend {
				if err := p.SetTopicAlias(a); err == nil {
					_ = p.ToAliasOnly()
				}
			} else if e.autoMapTopicAliasSend {
				if newAlias, mapped := e.sendAlias.Map(originalTopic); mapped {
					_ = p.SetTopicAlias(newAlias)
				}
			}
		}
	}

	wire, err := encodePacket(p)
	if err != nil {
		e.emitError(err)
		return err
	}
	if oversizeErr := e.checkPeerMaxSize(wire); oversizeErr != nil {
		p.TopicName = originalTopic
		e.emitError(oversizeErr)
		return oversizeErr
	}

	if qos != encoding.QoS0 {
		storePkt, rerr := p.RegulateForStore(originalTopic)
		if rerr == nil {
			storeWire, _ := encodePacket(storePkt)
			e.store.Insert(inflight.KindPublish, p.PacketID, storeWire)
		} else {
			e.store.Insert(inflight.KindPublish, p.PacketID, wire)
		}
		e.publishSendCount++
		if qos == encoding.QoS2 {
			e.qos2Processing[p.PacketID] = struct{}{}
		}
	}

	e.emitSendWithID(wire, p.PacketID, qos != encoding.QoS0)
	return nil
}

func (e *Engine) sendPublish311(p *encoding.PublishPacket311) error {
	qos := p.FixedHeader.QoS

	if qos != encoding.QoS0 {
		if p.PacketID == 0 || !e.pidMgr.Allocated(p.PacketID) {
			err := errs.Disallowed(errs.ErrPacketIDNotAllocated)
			e.emitError(err)
			return err
		}
		if e.publishSendMax != 0 && e.publishSendCount >= e.publishSendMax {
			err := errs.Disallowed(errs.ErrPublishSendMaxExceeded)
			e.emitError(err)
			return err
		}
	}

	if e.status != StatusConnected {
		if qos != encoding.QoS0 && e.offlinePublishEnabled {
			e.offlineQueue = append(e.offlineQueue, offlinePublish{pkt: p})
			return nil
		}
		err := errs.Disallowed(errs.ErrOfflineSendDisabled)
		e.emitError(err)
		return err
	}

	wire, err := encodePacket(p)
	if err != nil {
		e.emitError(err)
		return err
	}
	if oversizeErr := e.checkPeerMaxSize(wire); oversizeErr != nil {
		e.emitError(oversizeErr)
		return oversizeErr
	}

	if qos != encoding.QoS0 {
		e.store.Insert(inflight.KindPublish, p.PacketID, wire)
		e.publishSendCount++
		if qos == encoding.QoS2 {
			e.qos2Processing[p.PacketID] = struct{}{}
		}
	}

	e.emitSendWithID(wire, p.PacketID, qos != encoding.QoS0)
	return nil
}
