// Package display implements the Formatter collaborator: it turns a
// PacketInfo or probe error into a human-readable line, and a final
// stats.Snapshot into the summary block printed on termination.
package display

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/zhiburt/niping/internal/engine"
	"github.com/zhiburt/niping/internal/stats"
	"github.com/zhiburt/niping/internal/wire"
)

// reverseLookuper is the narrow slice of resolve.Resolver the
// Formatter needs, kept as an interface so display doesn't have to
// import the concrete resolver just to format a line.
type reverseLookuper interface {
	ReverseLookup(ctx context.Context, addr net.IP) (string, error)
}

// Formatter renders PacketInfo/errors/summaries as short, tagged lines,
// kept as a standalone collaborator instead of being inlined in main.
type Formatter struct {
	Destination string
	resolver    reverseLookuper
}

// New constructs a Formatter. resolver may be nil, in which case
// gateway substitution always falls back to the bare IP address.
func New(destination string, resolver reverseLookuper) *Formatter {
	return &Formatter{Destination: destination, resolver: resolver}
}

// PacketLine renders one successfully matched reply.
func (f *Formatter) PacketLine(info engine.PacketInfo) string {
	label := f.sourceLabel(info.Source)
	switch info.Type {
	case wire.ICMPTypeEchoReply:
		return fmt.Sprintf("%d bytes from %s: icmp_seq=%d ttl=%d time=%s",
			info.Bytes, label, info.Sequence, info.TTL, fmtRTT(info.RTT))
	default:
		return fmt.Sprintf("%d bytes from %s: icmp_seq=%d ttl=%d type=%s time=%s",
			info.Bytes, label, info.Sequence, info.TTL, info.Type, fmtRTT(info.RTT))
	}
}

// ErrorLine renders one send/recv failure for a probe.
func (f *Formatter) ErrorLine(seq uint16, err error) string {
	return fmt.Sprintf("request seq=%d failed: %v", seq, err)
}

// Summary renders the final aggregate block.
func (f *Formatter) Summary(s stats.Snapshot) string {
	loss := 0.0
	if s.Transmitted > 0 {
		loss = float64(s.Transmitted-s.Received) / float64(s.Transmitted) * 100
	}

	header := fmt.Sprintf("\n--- %s ping statistics ---\n", f.Destination)
	body := fmt.Sprintf("%d packets transmitted, %d received, %.1f%% packet loss, time %s",
		s.Transmitted, s.Received, loss, s.Elapsed.Round(time.Millisecond))
	if s.Received == 0 {
		return header + body
	}
	return header + body + fmt.Sprintf("\nrtt min/avg/max = %s/%s/%s",
		fmtRTT(s.Min), fmtRTT(s.Avg), fmtRTT(s.Max))
}

// sourceLabel attempts a reverse lookup for gateway substitution when
// the reply came from somewhere other than the configured destination
// (the TimeExceeded-from-a-router case), falling back to the bare IP
// address on failure or when the reply is from the destination itself.
func (f *Formatter) sourceLabel(src net.IP) string {
	if f.resolver == nil || src.String() == f.Destination {
		return src.String()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	name, err := f.resolver.ReverseLookup(ctx, src)
	if err != nil {
		return src.String()
	}
	return fmt.Sprintf("%s (%s)", name, src)
}

func fmtRTT(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
}
