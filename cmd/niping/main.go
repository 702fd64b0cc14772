// niping is a minimal ICMP Echo ("ping") utility: it resolves a
// destination, opens a raw socket, emits ECHO_REQUEST datagrams at a
// fixed cadence, correlates replies with requests, and prints
// per-packet lines plus an aggregate summary on termination.
//
// Usage:
//
//	sudo niping [flags] <host>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhiburt/niping/internal/cliconfig"
	"github.com/zhiburt/niping/internal/display"
	"github.com/zhiburt/niping/internal/engine"
	"github.com/zhiburt/niping/internal/rawsock"
	"github.com/zhiburt/niping/internal/resolve"
	"github.com/zhiburt/niping/internal/stats"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logrus.WithField("component", "cmd")

	cfg, err := cliconfig.Parse("niping", os.Args[1:])
	if err != nil {
		if err != cliconfig.ErrMissingHost {
			fmt.Fprintf(os.Stderr, "niping: %v\n", err)
		}
		return 2
	}

	resolver := resolve.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	dest, err := resolver.Resolve(ctx, cfg.Host)
	cancel()
	if err != nil {
		log.WithError(err).Error("resolve failed")
		fmt.Fprintln(os.Stderr, "Name or service not known")
		return 1
	}

	socket, err := rawsock.Open(cfg.TTL, cfg.ReadTimeout)
	if err != nil {
		log.WithError(err).Error("opening raw socket failed")
		fmt.Fprintf(os.Stderr, "niping: %v (try running as root)\n", err)
		return 1
	}

	eng, err := engine.New(socket, engine.Config{
		Destination: dest,
		TTL:         cfg.TTL,
		ReadTimeout: cfg.ReadTimeout,
		PacketLimit: cfg.Count,
		Interval:    cfg.Interval,
	})
	if err != nil {
		log.WithError(err).Error("constructing engine failed")
		fmt.Fprintf(os.Stderr, "niping: %v\n", err)
		return 1
	}

	formatter := display.New(dest.String(), resolver)
	aggregator := stats.New(formatter, func(line string) { fmt.Println(line) })

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Debug("shutdown signal observed")
		eng.Shutdown()
	}()

	fmt.Printf("PING %s (%s)\n", cfg.Host, dest)

	out := make(chan engine.Outcome, 16)
	go eng.Run(out)

	snapshot := aggregator.Run(out)
	fmt.Println(formatter.Summary(snapshot))

	return 0
}
