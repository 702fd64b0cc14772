package wire

import "net"

// minIPv4HeaderSize is the minimum IPv4 header length: 20 bytes (IHL=5,
// no options).
const minIPv4HeaderSize = 20

// Ipv4Header is a non-owning parsed view over a received buffer. It is
// only valid while the underlying buffer is alive.
type Ipv4Header struct {
	Version     uint8
	IHL         uint8 // header length in 32-bit words
	TotalLength uint16
	TTL         uint8
	Protocol    uint8
	Source      net.IP
	Destination net.IP
	Payload     []byte
}

// ParseIPv4 parses buf as an IPv4 header. buf must be at least 20 bytes
// and at least 4*IHL bytes; the payload slice begins at offset 4*IHL.
func ParseIPv4(buf []byte) (Ipv4Header, error) {
	if len(buf) < minIPv4HeaderSize {
		return Ipv4Header{}, ErrInvalidBufferSize
	}

	version := buf[0] >> 4
	if version != 4 {
		return Ipv4Header{}, ErrInvalidVersion
	}

	ihl := buf[0] & 0x0f
	hdrLen := int(ihl) * 4
	if len(buf) < hdrLen {
		return Ipv4Header{}, ErrInvalidHeaderSize
	}

	return Ipv4Header{
		Version:     version,
		IHL:         ihl,
		TotalLength: uint16(buf[2])<<8 | uint16(buf[3]),
		TTL:         buf[8],
		Protocol:    buf[9],
		Source:      net.IPv4(buf[12], buf[13], buf[14], buf[15]),
		Destination: net.IPv4(buf[16], buf[17], buf[18], buf[19]),
		Payload:     buf[hdrLen:],
	}, nil
}

// Ipv4Builder synthesizes a minimal, option-free IPv4 header (IHL=5),
// used only to build fake replies in test fixtures.
type Ipv4Builder struct {
	TTL         uint8
	Protocol    uint8
	Source      net.IP
	Destination net.IP
	Payload     []byte
}

// Build writes a 20-byte IPv4 header followed by Payload into buf and
// returns the total bytes written.
func (b Ipv4Builder) Build(buf []byte) (int, error) {
	n := minIPv4HeaderSize + len(b.Payload)
	if len(buf) < n {
		return 0, ErrInvalidBufferSize
	}

	totalLen := uint16(n)
	buf[0] = 0x45 // version 4, IHL 5
	buf[1] = 0
	buf[2] = byte(totalLen >> 8)
	buf[3] = byte(totalLen)
	buf[4], buf[5] = 0, 0 // identification
	buf[6], buf[7] = 0, 0 // flags/fragment offset
	buf[8] = b.TTL
	buf[9] = b.Protocol
	buf[10], buf[11] = 0, 0 // header checksum, unused by fixtures

	src := b.Source.To4()
	dst := b.Destination.To4()
	copy(buf[12:16], src)
	copy(buf[16:20], dst)
	copy(buf[minIPv4HeaderSize:n], b.Payload)

	return n, nil
}

// ProtocolTag enumerates the transport protocols the engine cares
// about. Parsing an unsupported numeric protocol is an error, not a
// panic.
type ProtocolTag uint8

const (
	ProtocolICMP ProtocolTag = 1
	ProtocolIP   ProtocolTag = 4 // IP-in-IP, used by some TimeExceeded payloads
)

// ParseProtocol maps a raw IPv4 protocol number to a ProtocolTag.
func ParseProtocol(n uint8) (ProtocolTag, error) {
	switch n {
	case uint8(ProtocolICMP):
		return ProtocolICMP, nil
	case uint8(ProtocolIP):
		return ProtocolIP, nil
	default:
		return 0, ErrUnsupportedProtocol
	}
}
