package encoding

import "io"

// ProtocolVersion identifies the MQTT protocol revision a packet is encoded
// for. The wire format of the fixed header is shared across revisions; what
// differs is the set of packet types a revision permits (AUTH and the v5
// property system are v5-only) and the protocol name string sent in CONNECT.
type ProtocolVersion byte

const (
	ProtocolVersion30  ProtocolVersion = 3
	ProtocolVersion311 ProtocolVersion = 4
	ProtocolVersion50  ProtocolVersion = 5
)

// DefaultProtocolName is the protocol name field CONNECT carries for v3.1.1
// and v5 ("MQTT"). MQTT 3.0 used "MQIsdp" instead.
const DefaultProtocolName = "MQTT"

// ProtocolName30 is the protocol name field CONNECT carried under the
// pre-standard MQTT 3.0 draft.
const ProtocolName30 = "MQIsdp"

func (v ProtocolVersion) String() string {
	switch v {
	case ProtocolVersion30:
		return "3.0"
	case ProtocolVersion311:
		return "3.1.1"
	case ProtocolVersion50:
		return "5.0"
	default:
		return "unknown"
	}
}

// maxPacketType returns the highest packet type value permitted under v.
// AUTH (15) was introduced in MQTT 5.0; earlier revisions top out at
// DISCONNECT (14).
func (v ProtocolVersion) maxPacketType() PacketType {
	if v == ProtocolVersion50 {
		return AUTH
	}
	return DISCONNECT
}

// ParseFixedHeaderWithVersion parses a fixed header the same way
// ParseFixedHeader does, additionally rejecting packet types the given
// protocol version does not define (AUTH under v3.0/v3.1.1).
func ParseFixedHeaderWithVersion(r io.Reader, version ProtocolVersion) (*FixedHeader, error) {
	header := &FixedHeader{}

	var firstByte [1]byte
	if _, err := io.ReadFull(r, firstByte[:]); err != nil {
		if err == io.EOF {
			return nil, ErrUnexpectedEOF
		}
		return nil, err
	}

	header.Type = PacketType(firstByte[0] >> 4)
	if header.Type == Reserved {
		return nil, ErrInvalidReservedType
	}
	if header.Type > version.maxPacketType() {
		return nil, ErrInvalidType
	}

	header.Flags = firstByte[0] & 0x0F

	if header.Type == PUBLISH {
		header.DUP = (header.Flags & 0x08) != 0
		header.QoS = QoS((header.Flags & 0x06) >> 1)
		header.Retain = (header.Flags & 0x01) != 0
		if !header.QoS.IsValid() {
			return nil, ErrInvalidQoS
		}
	} else if err := validateFlags(header.Type, header.Flags); err != nil {
		return nil, err
	}

	remainingLength, err := DecodeVariableByteInteger(r)
	if err != nil {
		return nil, err
	}
	header.RemainingLength = remainingLength

	return header, nil
}

// EncodeFixedHeaderWithVersion writes h to w, rejecting packet types the
// given protocol version does not define.
func (h *FixedHeader) EncodeFixedHeaderWithVersion(w io.Writer, version ProtocolVersion) error {
	if h.Type == Reserved {
		return ErrInvalidReservedType
	}
	if h.Type > version.maxPacketType() {
		return ErrInvalidType
	}

	flags := h.Flags
	if h.Type == PUBLISH {
		flags = byte(h.QoS) << 1
		if h.DUP {
			flags |= 0x08
		}
		if h.Retain {
			flags |= 0x01
		}
	}

	firstByte := byte(h.Type)<<4 | flags
	if _, err := w.Write([]byte{firstByte}); err != nil {
		return err
	}

	lenBytes, err := EncodeVariableByteInteger(h.RemainingLength)
	if err != nil {
		return err
	}
	_, err = w.Write(lenBytes)
	return err
}

// EncodeFixedHeader311 writes h to w as an MQTT 3.1.1 fixed header.
func (h *FixedHeader) EncodeFixedHeader311(w io.Writer) error {
	return h.EncodeFixedHeaderWithVersion(w, ProtocolVersion311)
}

// ParseFixedHeader311 parses an MQTT 3.1.1 fixed header from r.
func ParseFixedHeader311(r io.Reader) (*FixedHeader, error) {
	return ParseFixedHeaderWithVersion(r, ProtocolVersion311)
}

// ParseFixedHeaderFromBytesWithVersion parses a fixed header from a byte
// slice the same way ParseFixedHeaderFromBytes does, additionally rejecting
// packet types the given protocol version does not define.
func ParseFixedHeaderFromBytesWithVersion(data []byte, version ProtocolVersion) (*FixedHeader, int, error) {
	if len(data) < 2 {
		return nil, 0, ErrUnexpectedEOF
	}

	header := &FixedHeader{}
	offset := 0

	header.Type = PacketType(data[offset] >> 4)
	if header.Type == Reserved {
		return nil, 0, ErrInvalidReservedType
	}
	if header.Type > version.maxPacketType() {
		return nil, 0, ErrInvalidType
	}

	header.Flags = data[offset] & 0x0F
	offset++

	if header.Type == PUBLISH {
		header.DUP = (header.Flags & 0x08) != 0
		header.QoS = QoS((header.Flags & 0x06) >> 1)
		header.Retain = (header.Flags & 0x01) != 0
		if !header.QoS.IsValid() {
			return nil, 0, ErrInvalidQoS
		}
	} else if err := validateFlags(header.Type, header.Flags); err != nil {
		return nil, 0, err
	}

	remainingLength, bytesRead, err := DecodeVariableByteIntegerFromBytes(data[offset:])
	if err != nil {
		return nil, 0, err
	}
	header.RemainingLength = remainingLength
	offset += bytesRead

	return header, offset, nil
}

// ParseFixedHeaderFromBytes311 parses an MQTT 3.1.1 fixed header from data.
func ParseFixedHeaderFromBytes311(data []byte) (*FixedHeader, int, error) {
	return ParseFixedHeaderFromBytesWithVersion(data, ProtocolVersion311)
}

// EncodeFixedHeaderToBytesWithVersion writes h into buf starting at offset 0,
// returning the number of bytes written. It rejects packet types the given
// protocol version does not define.
func (h *FixedHeader) EncodeFixedHeaderToBytesWithVersion(buf []byte, version ProtocolVersion) (int, error) {
	if h.Type == Reserved {
		return 0, ErrInvalidReservedType
	}
	if h.Type > version.maxPacketType() {
		return 0, ErrInvalidType
	}
	if len(buf) < 1 {
		return 0, ErrBufferTooSmall
	}

	flags := h.Flags
	if h.Type == PUBLISH {
		flags = byte(h.QoS) << 1
		if h.DUP {
			flags |= 0x08
		}
		if h.Retain {
			flags |= 0x01
		}
	}
	buf[0] = byte(h.Type)<<4 | flags

	bytesWritten, err := EncodeVariableByteIntegerTo(buf, 1, h.RemainingLength)
	if err != nil {
		return 0, err
	}
	return 1 + bytesWritten, nil
}

// EncodeFixedHeaderToBytes311 writes h into buf as an MQTT 3.1.1 fixed
// header.
func (h *FixedHeader) EncodeFixedHeaderToBytes311(buf []byte) (int, error) {
	return h.EncodeFixedHeaderToBytesWithVersion(buf, ProtocolVersion311)
}
