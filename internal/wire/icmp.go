package wire

import "encoding/binary"

// ICMPType is a wire-level ICMP message type. Mapping a numeric value
// outside the known set never fails; unknown types stringify as
// "unknown" rather than causing a parse error, since the receive loop
// must be able to observe traffic of any ICMP type.
type ICMPType uint8

const (
	ICMPTypeEchoReply              ICMPType = 0
	ICMPTypeDestinationUnreachable ICMPType = 3
	ICMPTypeRedirectMessage        ICMPType = 5
	ICMPTypeEchoRequest            ICMPType = 8
	ICMPTypeRouterAdvertisement    ICMPType = 9
	ICMPTypeRouterSolicitation     ICMPType = 10
	ICMPTypeTimeExceeded           ICMPType = 11
	ICMPTypeParameterProblem       ICMPType = 12
	ICMPTypeTimestamp              ICMPType = 13
	ICMPTypeTimestampReply         ICMPType = 14
	ICMPTypeExtendedEchoRequest    ICMPType = 42
	ICMPTypeExtendedEchoReply      ICMPType = 43
)

func (t ICMPType) String() string {
	switch t {
	case ICMPTypeEchoReply:
		return "echo-reply"
	case ICMPTypeDestinationUnreachable:
		return "destination-unreachable"
	case ICMPTypeRedirectMessage:
		return "redirect"
	case ICMPTypeEchoRequest:
		return "echo-request"
	case ICMPTypeRouterAdvertisement:
		return "router-advertisement"
	case ICMPTypeRouterSolicitation:
		return "router-solicitation"
	case ICMPTypeTimeExceeded:
		return "time-exceeded"
	case ICMPTypeParameterProblem:
		return "parameter-problem"
	case ICMPTypeTimestamp:
		return "timestamp"
	case ICMPTypeTimestampReply:
		return "timestamp-reply"
	case ICMPTypeExtendedEchoRequest:
		return "extended-echo-request"
	case ICMPTypeExtendedEchoReply:
		return "extended-echo-reply"
	default:
		return "unknown"
	}
}

// icmpHeaderSize is the fixed 8-byte ICMP header: type, code, checksum,
// identifier, sequence.
const icmpHeaderSize = 8

// ICMPHeader is a non-owning parsed view over a received buffer. It is
// only valid while the underlying buffer is alive; it never copies the
// payload.
type ICMPHeader struct {
	Type       ICMPType
	Code       uint8
	Checksum   uint16
	Identifier uint16
	Sequence   uint16
	Payload    []byte
}

// ParseICMP parses buf as an ICMP header + payload. buf must be at
// least 8 bytes; the payload is everything after the header.
func ParseICMP(buf []byte) (ICMPHeader, error) {
	if len(buf) < icmpHeaderSize {
		return ICMPHeader{}, ErrInvalidBufferSize
	}
	return ICMPHeader{
		Type:       ICMPType(buf[0]),
		Code:       buf[1],
		Checksum:   binary.BigEndian.Uint16(buf[2:4]),
		Identifier: binary.BigEndian.Uint16(buf[4:6]),
		Sequence:   binary.BigEndian.Uint16(buf[6:8]),
		Payload:    buf[icmpHeaderSize:],
	}, nil
}

// VerifyICMP parses buf and recomputes its checksum over the whole
// slice. A zero return means the checksum is intact.
func VerifyICMP(buf []byte) (uint16, error) {
	if _, err := ParseICMP(buf); err != nil {
		return 0, err
	}
	return Checksum(buf), nil
}

// VerifyICMPStrict is VerifyICMP for callers that want a plain error
// rather than a raw checksum value. It's the integrity check the
// receive loop applies before trusting a datagram's header fields.
func VerifyICMPStrict(buf []byte) error {
	sum, err := VerifyICMP(buf)
	if err != nil {
		return err
	}
	if sum != 0 {
		return ErrChecksumFailed
	}
	return nil
}

// ICMPBuilder constructs an outgoing ICMP message into a caller-owned
// buffer. Payload is owned bytes so it outlives any single send
// iteration; Sequence is the only field callers typically mutate
// between sends.
type ICMPBuilder struct {
	Type       ICMPType
	Code       uint8
	Identifier uint16
	Sequence   uint16
	Payload    []byte
}

// Build writes the message into buf and returns the number of bytes
// written (8 + len(Payload)). buf must be at least that large, or
// ErrInvalidBufferSize is returned. The checksum is computed last, over
// exactly the written prefix — never any trailing slack in buf — with
// the checksum field zeroed while summing.
func (b ICMPBuilder) Build(buf []byte) (int, error) {
	n := icmpHeaderSize + len(b.Payload)
	if len(buf) < n {
		return 0, ErrInvalidBufferSize
	}

	buf[0] = byte(b.Type)
	buf[1] = b.Code
	buf[2], buf[3] = 0, 0
	binary.BigEndian.PutUint16(buf[4:6], b.Identifier)
	binary.BigEndian.PutUint16(buf[6:8], b.Sequence)
	copy(buf[icmpHeaderSize:n], b.Payload)

	sum := Checksum(buf[:n])
	binary.BigEndian.PutUint16(buf[2:4], sum)

	return n, nil
}
