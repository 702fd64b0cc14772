// Package stats implements the aggregator: it consumes probe outcomes
// from the echo engine's handoff channel and maintains transmitted/
// received counters and min/max/mean RTT statistics.
package stats

import (
	"time"

	"github.com/zhiburt/niping/internal/engine"
	"github.com/zhiburt/niping/internal/wire"
)

// Snapshot is the final summary computed when the outcome channel
// closes.
type Snapshot struct {
	Transmitted int
	Received    int
	Elapsed     time.Duration
	Min         time.Duration
	Max         time.Duration
	Avg         time.Duration
}

// LineSink formats a line for every outcome as it arrives,
// realizing the Formatter collaborator without coupling the aggregator
// to any particular output format.
type LineSink interface {
	PacketLine(info engine.PacketInfo) string
	ErrorLine(seq uint16, err error) string
}

// Aggregator accumulates statistics over a stream of engine.Outcome
// values. It owns no goroutine of its own: Run blocks until in is
// closed by its single producer.
type Aggregator struct {
	transmitted int
	received    int
	samples     []time.Duration
	start       time.Time

	sink LineSink
	print func(string)
}

// New constructs an Aggregator. sink formats per-packet lines; print
// is where those lines (and nothing else) are written — typically
// fmt.Println wired from cmd/niping.
func New(sink LineSink, print func(string)) *Aggregator {
	return &Aggregator{sink: sink, print: print, start: time.Now()}
}

// Run consumes in until it is closed, then returns the final Snapshot.
func (a *Aggregator) Run(in <-chan engine.Outcome) Snapshot {
	for o := range in {
		a.transmitted++
		if o.Err != nil {
			if a.sink != nil {
				a.print(a.sink.ErrorLine(o.Sequence, o.Err))
			}
			continue
		}

		a.samples = append(a.samples, o.Info.RTT)
		if o.Info.Type == wire.ICMPTypeEchoReply {
			a.received++
		}
		if a.sink != nil {
			a.print(a.sink.PacketLine(o.Info))
		}
	}
	return a.snapshot()
}

func (a *Aggregator) snapshot() Snapshot {
	s := Snapshot{
		Transmitted: a.transmitted,
		Received:    a.received,
		Elapsed:     time.Since(a.start),
	}
	if len(a.samples) == 0 {
		return s
	}

	s.Min, s.Max = a.samples[0], a.samples[0]
	var total time.Duration
	for _, d := range a.samples {
		total += d
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}
	s.Avg = total / time.Duration(len(a.samples))
	return s
}
