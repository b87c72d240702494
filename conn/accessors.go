package conn

import (
	"github.com/axmq/mqttcore/encoding"
	"github.com/axmq/mqttcore/inflight"
)

// AcquireUniquePacketID allocates the next free packet id. ok is false
// iff all 65535 ids are currently allocated.
func (e *Engine) AcquireUniquePacketID() (id uint16, ok bool) {
	id, ok = e.pidMgr.Acquire()
	e.drain()
	return id, ok
}

// RegisterPacketID reserves a specific id chosen by the caller (rather
// than by AcquireUniquePacketID). It reports false if id is 0 or already
// allocated.
func (e *Engine) RegisterPacketID(id uint16) bool {
	ok := e.pidMgr.Register(id)
	e.drain()
	return ok
}

// ReleasePacketID frees id, emitting OnPacketIDRelease. Hosts must call
// this after a failed write for any send whose release-pid-on-error was
// non-nil.
func (e *Engine) ReleasePacketID(id uint16) {
	e.releasePacketID(id)
	e.drain()
}

// GetQoS2PublishHandledPacketIDs returns the set of packet ids for which
// this engine, on the inbound side, has already sent a PUBREC — the
// duplicate-suppression set a persisted session carries across restarts.
func (e *Engine) GetQoS2PublishHandledPacketIDs() []uint16 {
	ids := make([]uint16, 0, len(e.qos2Handled))
	for id := range e.qos2Handled {
		ids = append(ids, id)
	}
	return ids
}

// RestoreQoS2PublishHandledPacketIDs replaces the handled-id set, used
// when resuming a persisted session.
func (e *Engine) RestoreQoS2PublishHandledPacketIDs(ids []uint16) {
	e.qos2Handled = make(map[uint16]struct{}, len(ids))
	for _, id := range ids {
		e.qos2Handled[id] = struct{}{}
	}
}

// GetStoredPackets returns every inflight PUBLISH/PUBREL entry in replay
// order.
func (e *Engine) GetStoredPackets() []inflight.Entry {
	return e.store.Entries()
}

// RestorePackets replaces the inflight store's contents, used when
// resuming a persisted session. Packet ids referenced by entries are
// re-registered with the packet-id manager so Send/Recv treat them as
// already allocated.
func (e *Engine) RestorePackets(entries []inflight.Entry) {
	e.store.Restore(entries)
	for _, entry := range entries {
		e.pidMgr.Register(entry.PacketID)
	}
}

// IsPublishProcessing reports whether an outbound QoS2 PUBLISH with this
// packet id is currently awaiting PUBREC.
func (e *Engine) IsPublishProcessing(id uint16) bool {
	_, ok := e.qos2Processing[id]
	return ok
}

// ReceiveMaximumVacancyForSend returns how many more QoS1/2 PUBLISHes may
// be sent before publish_send_max is reached. ok is false only when
// publish_send_max is 0; it starts at DefaultReceiveMaximum (65535) and a
// Receive Maximum received in CONNACK does not change it, so ok is
// normally true.
func (e *Engine) ReceiveMaximumVacancyForSend() (vacancy int, ok bool) {
	if e.publishSendMax == 0 {
		return 0, false
	}
	if e.publishSendCount >= e.publishSendMax {
		return 0, true
	}
	return int(e.publishSendMax - e.publishSendCount), true
}

// RegulateForStore returns a copy of pkt with any topic-alias encoding
// resolved to an explicit topic, suitable for persisting or replaying
// without depending on alias-table state that may not survive a restart.
// resolvedTopic must be supplied when pkt's topic is empty (alias-only
// form); it is ignored otherwise.
func (e *Engine) RegulateForStore(pkt *encoding.PublishPacket, resolvedTopic string) (*encoding.PublishPacket, error) {
	return pkt.RegulateForStore(resolvedTopic)
}
