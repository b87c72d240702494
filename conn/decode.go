package conn

import (
	"bytes"

	"github.com/axmq/mqttcore/encoding"
)

// wireVersion returns the protocol version to parse incoming fixed
// headers against. Before the version is known (no CONNECT has been
// sent or received yet) v5's fixed-header rules are used since they are
// the strictly less restrictive of the two (v5 additionally permits
// AUTH); the only packet type legal at that point is CONNECT itself,
// whose own payload then pins down the real version.
func (e *Engine) wireVersion() encoding.ProtocolVersion {
	if e.version == Version311 {
		return encoding.ProtocolVersion311
	}
	return encoding.ProtocolVersion50
}

// peekConnectVersion reads the protocol level byte out of a CONNECT
// payload without consuming it through a version-specific parser,
// letting the caller pick the right parser before committing to one.
func peekConnectVersion(payload []byte) (encoding.ProtocolVersion, error) {
	if len(payload) < 2 {
		return 0, encoding.ErrUnexpectedEOF
	}
	nameLen := int(payload[0])<<8 | int(payload[1])
	if len(payload) < 2+nameLen+1 {
		return 0, encoding.ErrUnexpectedEOF
	}
	return encoding.ProtocolVersion(payload[2+nameLen]), nil
}

// decodeFrame parses a single complete wire frame (as produced by
// stream.Parser) into a typed encoding.Packet.
func (e *Engine) decodeFrame(raw []byte) (encoding.Packet, error) {
	fh, offset, err := encoding.ParseFixedHeaderFromBytesWithVersion(raw, e.wireVersion())
	if err != nil {
		return nil, err
	}
	payload := raw[offset:]
	r := bytes.NewReader(payload)

	if fh.Type == encoding.CONNECT && e.version == VersionUndetermined {
		v, verr := peekConnectVersion(payload)
		if verr != nil {
			return nil, verr
		}
		if v == encoding.ProtocolVersion50 {
			return encoding.ParseConnectPacket(r, fh)
		}
		return encoding.ParseConnectPacket311(r, fh)
	}

	if e.version == Version311 {
		return decode311(fh, r)
	}
	return decodeV5(fh, r)
}

func decodeV5(fh *encoding.FixedHeader, r *bytes.Reader) (encoding.Packet, error) {
	switch fh.Type {
	case encoding.CONNECT:
		return encoding.ParseConnectPacket(r, fh)
	case encoding.CONNACK:
		return encoding.ParseConnackPacket(r, fh)
	case encoding.PUBLISH:
		return encoding.ParsePublishPacket(r, fh)
	case encoding.PUBACK:
		return encoding.ParsePubackPacket(r, fh)
	case encoding.PUBREC:
		return encoding.ParsePubrecPacket(r, fh)
	case encoding.PUBREL:
		return encoding.ParsePubrelPacket(r, fh)
	case encoding.PUBCOMP:
		return encoding.ParsePubcompPacket(r, fh)
	case encoding.SUBSCRIBE:
		return encoding.ParseSubscribePacket(r, fh)
	case encoding.SUBACK:
		return encoding.ParseSubackPacket(r, fh)
	case encoding.UNSUBSCRIBE:
		return encoding.ParseUnsubscribePacket(r, fh)
	case encoding.UNSUBACK:
		return encoding.ParseUnsubackPacket(r, fh)
	case encoding.PINGREQ:
		return encoding.ParsePingreqPacket(fh)
	case encoding.PINGRESP:
		return encoding.ParsePingrespPacket(fh)
	case encoding.DISCONNECT:
		return encoding.ParseDisconnectPacket(r, fh)
	case encoding.AUTH:
		return encoding.ParseAuthPacket(r, fh)
	default:
		return nil, encoding.ErrInvalidType
	}
}

func decode311(fh *encoding.FixedHeader, r *bytes.Reader) (encoding.Packet, error) {
	switch fh.Type {
	case encoding.CONNECT:
		return encoding.ParseConnectPacket311(r, fh)
	case encoding.CONNACK:
		return encoding.ParseConnackPacket311(r, fh)
	case encoding.PUBLISH:
		return encoding.ParsePublishPacket311(r, fh)
	case encoding.PUBACK:
		return encoding.ParsePubackPacket311(r, fh)
	case encoding.PUBREC:
		return encoding.ParsePubrecPacket311(r, fh)
	case encoding.PUBREL:
		return encoding.ParsePubrelPacket311(r, fh)
	case encoding.PUBCOMP:
		return encoding.ParsePubcompPacket311(r, fh)
	case encoding.SUBSCRIBE:
		return encoding.ParseSubscribePacket311(r, fh)
	case encoding.SUBACK:
		return encoding.ParseSubackPacket311(r, fh)
	case encoding.UNSUBSCRIBE:
		return encoding.ParseUnsubscribePacket311(r, fh)
	case encoding.UNSUBACK:
		return encoding.ParseUnsubackPacket311(r, fh)
	case encoding.PINGREQ:
		return encoding.ParsePingreqPacket(fh)
	case encoding.PINGRESP:
		return encoding.ParsePingrespPacket(fh)
	case encoding.DISCONNECT:
		return encoding.ParseDisconnectPacket311(fh)
	default:
		return nil, encoding.ErrInvalidType
	}
}
