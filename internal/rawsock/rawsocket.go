package rawsock

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/net/icmp"
)

// RawSocket is the production Socket implementation: a raw ICMPv4
// socket opened once and reused for every send/recv cycle of an echo
// engine's lifetime. Socket creation, option setting, and address
// conversion are collaborators the engine doesn't need to know about —
// it only sees the Socket interface.
type RawSocket struct {
	conn        *icmp.PacketConn
	readTimeout time.Duration
}

// Open creates a raw ICMPv4 socket. If ttl > 0, it is set on the
// connection before the first send. readTimeout bounds every
// subsequent Recv call.
func Open(ttl int, readTimeout time.Duration) (*RawSocket, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("rawsock: open raw icmp socket: %w", err)
	}

	if ttl > 0 {
		if err := conn.IPv4PacketConn().SetTTL(ttl); err != nil {
			conn.Close()
			return nil, fmt.Errorf("rawsock: set ttl: %w", err)
		}
	}

	return &RawSocket{conn: conn, readTimeout: readTimeout}, nil
}

// SendTo implements Socket.
func (s *RawSocket) SendTo(buf []byte, dest net.IP) (int, error) {
	n, err := s.conn.WriteTo(buf, &net.IPAddr{IP: dest})
	if err != nil {
		return n, fmt.Errorf("rawsock: send: %w", err)
	}
	return n, nil
}

// Recv implements Socket. It applies the configured read-timeout to
// this call before reading; a timeout surfaces as an error wrapping a
// *net.OpError whose Timeout() method returns true (reachable with
// errors.As).
func (s *RawSocket) Recv(buf []byte) (int, error) {
	if s.readTimeout > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return 0, fmt.Errorf("rawsock: set read deadline: %w", err)
		}
	}
	n, _, err := s.conn.ReadFrom(buf)
	if err != nil {
		return n, fmt.Errorf("rawsock: recv: %w", err)
	}
	return n, nil
}

// Close implements Socket.
func (s *RawSocket) Close() error {
	return s.conn.Close()
}

var _ Socket = (*RawSocket)(nil)
