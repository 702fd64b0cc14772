// Package cliconfig implements the argument-parsing collaborator: it
// turns os.Args into the Config record the core consumes.
package cliconfig

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Config is the parsed, validated CLI surface.
type Config struct {
	Host        string
	TTL         int
	ReadTimeout time.Duration
	Count       int // 0 means unbounded
	Interval    time.Duration
}

// ErrMissingHost is returned when no positional host argument is given.
var ErrMissingHost = errors.New("cliconfig: a destination host or address is required")

// Parse builds a pflag.FlagSet for the ping CLI surface and parses args
// (typically os.Args[1:]).
func Parse(progName string, args []string) (Config, error) {
	fs := pflag.NewFlagSet(progName, pflag.ContinueOnError)

	ttl := fs.IntP("ttl", "t", 0, "IP TTL to set on outgoing packets (0 = OS default)")
	timeoutSecs := fs.IntP("timeout", "W", 10, "socket read-timeout, in seconds")
	count := fs.IntP("count", "c", 0, "stop after emitting n probes (0 = unbounded)")
	intervalSecs := fs.Float64P("interval", "i", 1.0, "inter-send interval, in fractional seconds")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <host>\n\n", progName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return Config{}, ErrMissingHost
	}

	return Config{
		Host:        fs.Arg(0),
		TTL:         *ttl,
		ReadTimeout: time.Duration(*timeoutSecs) * time.Second,
		Count:       *count,
		Interval:    time.Duration(*intervalSecs * float64(time.Second)),
	}, nil
}
