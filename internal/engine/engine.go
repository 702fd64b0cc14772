// Package engine implements the echo loop: it sends a tagged ICMP
// Echo Request, waits for a matching reply on a shared raw socket that
// receives every ICMP datagram the host sees, filters out foreign
// traffic, times the round trip, and emits a typed Outcome for each
// probe onto a channel consumed by an aggregator.
package engine

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhiburt/niping/internal/rawsock"
	"github.com/zhiburt/niping/internal/wire"
)

// DataSize is the fixed payload length of every outgoing echo request,
// used as part of the ownership test: 32 random bytes are assumed
// unique enough that an exact payload match identifies our own probe.
const DataSize = 32

// sendBufferSize is the size of the iteration-local send buffer. 300
// bytes comfortably covers the 8-byte ICMP header plus DataSize.
const sendBufferSize = 300

// recvBufferSize is the size of the iteration-local receive buffer,
// large enough for an IPv4 header, an ICMP header, and a reasonably
// sized embedded original datagram in a TimeExceeded reply.
const recvBufferSize = 1500

// PacketInfo describes one matched reply.
type PacketInfo struct {
	Source   net.IP
	TTL      uint8
	Sequence uint16
	Type     wire.ICMPType
	Bytes    int
	RTT      time.Duration
}

// SendError and RecvError wrap I/O failures surfaced to the aggregator.
// Both are never fatal to the engine: the main loop continues to the
// next probe after emitting one.
type SendError struct{ Err error }

func (e *SendError) Error() string { return fmt.Sprintf("send: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

type RecvError struct{ Err error }

func (e *RecvError) Error() string { return fmt.Sprintf("recv: %v", e.Err) }
func (e *RecvError) Unwrap() error { return e.Err }

// Outcome is the Result<PacketInfo> of a single probe: exactly one of
// Info or Err is meaningful.
type Outcome struct {
	Sequence uint16
	Info     PacketInfo
	Err      error
}

// Config carries the constructor inputs for an Engine. TTL and
// ReadTimeout are socket options applied by the caller when opening the
// rawsock.Socket passed to New — they're named here only so callers
// have one place listing every constructor input; the engine itself
// doesn't store or act on them.
type Config struct {
	Destination net.IP
	TTL         int // 0 means "use OS default"
	ReadTimeout time.Duration
	PacketLimit int // 0 means unbounded
	Interval    time.Duration
}

// requestTemplate is the engine's fixed outgoing request shape:
// identifier and payload are picked once at construction and never
// change; sequence increases monotonically by one per send attempt,
// including attempts that fail.
type requestTemplate struct {
	identifier uint16
	payload    []byte
	sequence   uint16
}

// Engine owns its socket and request template exclusively; it is the
// producer half of the engine/aggregator pipeline described in the
// concurrency model.
type Engine struct {
	socket      rawsock.Socket
	destination net.IP
	interval    time.Duration
	limit       int
	request     requestTemplate

	shutdown atomic.Bool

	log *logrus.Entry
}

// New constructs an Engine over an already-open socket. The engine
// takes ownership of socket and will Close it when the run loop exits.
func New(socket rawsock.Socket, cfg Config) (*Engine, error) {
	id, err := randomIdentifier()
	if err != nil {
		return nil, fmt.Errorf("engine: generate identifier: %w", err)
	}
	payload, err := randomPayload(DataSize)
	if err != nil {
		return nil, fmt.Errorf("engine: generate payload: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	return &Engine{
		socket:      socket,
		destination: cfg.Destination,
		interval:    interval,
		limit:       cfg.PacketLimit,
		request: requestTemplate{
			identifier: id,
			payload:    payload,
			sequence:   0,
		},
		log: logrus.WithField("component", "engine"),
	}, nil
}

// Shutdown sets the cooperative shutdown flag observed between
// iterations. It is safe to call from a different goroutine (e.g. a
// signal handler).
func (e *Engine) Shutdown() {
	e.shutdown.Store(true)
}

// Run drives the main loop, emitting one Outcome per probe onto out,
// until the shutdown flag is observed or the packet budget is
// exhausted. It closes out and the underlying socket before returning.
func (e *Engine) Run(out chan<- Outcome) {
	defer close(out)
	defer e.socket.Close()

	remaining := e.limit
	for {
		if e.shutdown.Load() {
			e.log.Debug("shutdown observed, exiting run loop")
			return
		}
		if e.limit > 0 {
			if remaining <= 0 {
				e.log.Debug("packet budget exhausted, exiting run loop")
				return
			}
			remaining--
		}

		e.request.sequence++
		seq := e.request.sequence
		out <- e.probe(seq)

		time.Sleep(e.interval)
	}
}

// probe executes one send/receive cycle and returns its Outcome. Each
// Recv is bounded by the socket's configured read-timeout; a datagram
// that is not ours starts another Recv, so one probe can wait longer.
func (e *Engine) probe(seq uint16) Outcome {
	sendBuf := make([]byte, sendBufferSize)
	builder := wire.ICMPBuilder{
		Type:       wire.ICMPTypeEchoRequest,
		Code:       0,
		Identifier: e.request.identifier,
		Sequence:   seq,
		Payload:    e.request.payload,
	}
	n, err := builder.Build(sendBuf)
	if err != nil {
		// Buffers are sized in advance to make this unreachable; a
		// build failure here is a programming bug.
		panic(fmt.Sprintf("engine: build outgoing echo request: %v", err))
	}

	t0 := time.Now()
	if _, err := e.socket.SendTo(sendBuf[:n], e.destination); err != nil {
		return Outcome{Sequence: seq, Err: &SendError{Err: err}}
	}

	for {
		recvBuf := make([]byte, recvBufferSize)
		m, err := e.socket.Recv(recvBuf)
		if err != nil {
			return Outcome{Sequence: seq, Err: &RecvError{Err: err}}
		}
		rtt := time.Since(t0)

		info, ok := e.parseAndFilter(recvBuf[:m], rtt)
		if !ok {
			continue
		}
		return Outcome{Sequence: seq, Info: info}
	}
}

// parseAndFilter parses one received raw-socket datagram (IPv4 header
// + ICMP header) and applies the ownership test. ok is false for
// anything that fails to parse or doesn't belong to this engine.
func (e *Engine) parseAndFilter(buf []byte, rtt time.Duration) (PacketInfo, bool) {
	ipHdr, err := wire.ParseIPv4(buf)
	if err != nil {
		return PacketInfo{}, false
	}

	icmpHdr, err := wire.ParseICMP(ipHdr.Payload)
	if err != nil {
		return PacketInfo{}, false
	}

	if err := wire.VerifyICMPStrict(ipHdr.Payload); err != nil {
		e.log.WithError(err).Debug("dropping datagram with bad checksum")
		return PacketInfo{}, false
	}

	if !e.owns(icmpHdr) {
		return PacketInfo{}, false
	}

	return PacketInfo{
		Source:   ipHdr.Source,
		TTL:      ipHdr.TTL,
		Sequence: icmpHdr.Sequence,
		Type:     icmpHdr.Type,
		Bytes:    len(buf),
		RTT:      rtt,
	}, true
}

// owns decides whether a received ICMP header belongs to this engine's
// outstanding probe.
func (e *Engine) owns(r wire.ICMPHeader) bool {
	switch r.Type {
	case wire.ICMPTypeEchoReply:
		return bytesEqual(r.Payload, e.request.payload)

	case wire.ICMPTypeTimeExceeded:
		return e.timeExceededIsOurs(r.Payload)

	case wire.ICMPTypeEchoRequest:
		// Reject our own outgoing packet looped back by the kernel
		// (pinging localhost) so it isn't mis-counted as a reply.
		if bytesEqual(r.Payload, e.request.payload) && r.Identifier == e.request.identifier {
			return false
		}
		return true

	default:
		// Any other recognized or unknown type is surfaced to the
		// aggregator as informational; false positives can't conceal
		// a real reply because real replies match earlier.
		return true
	}
}

// timeExceededIsOurs re-parses a TimeExceeded payload as an embedded
// IPv4+ICMP datagram and checks its identifier. Gateways are permitted
// to omit the original payload (RFC 1812 §4.3.2.3), so payload
// comparison is not required here.
func (e *Engine) timeExceededIsOurs(embedded []byte) bool {
	innerIP, err := wire.ParseIPv4(embedded)
	if err != nil {
		return false
	}
	innerICMP, err := wire.ParseICMP(innerIP.Payload)
	if err != nil {
		return false
	}
	return innerICMP.Identifier == e.request.identifier
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func randomIdentifier() (uint16, error) {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func randomPayload(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
