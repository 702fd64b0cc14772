// Package resolve provides the Resolver collaborator: hostname-to-
// address resolution for starting a ping session, and address-to-name
// reverse resolution for the Formatter's gateway substitution. Both
// are explicitly external to the echo engine's core algorithm.
package resolve

import (
	"context"
	"fmt"
	"net"
)

// Resolver looks up IPv4 addresses and reverse-resolves them back to
// names.
type Resolver struct {
	lookup  func(ctx context.Context, network, host string) ([]net.IPAddr, error)
	reverse func(ctx context.Context, addr string) ([]string, error)
}

// New constructs a Resolver backed by net.DefaultResolver.
func New() *Resolver {
	return &Resolver{
		lookup: func(ctx context.Context, network, host string) ([]net.IPAddr, error) {
			return net.DefaultResolver.LookupIPAddr(ctx, host)
		},
		reverse: net.DefaultResolver.LookupAddr,
	}
}

// Resolve looks up host and returns its first IPv4 address, falling
// back to failure if none is found (IPv6 destinations are out of
// scope).
func (r *Resolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
		return nil, fmt.Errorf("resolve: %q is not an IPv4 address", host)
	}

	addrs, err := r.lookup(ctx, "ip4", host)
	if err != nil {
		return nil, fmt.Errorf("resolve: lookup %q: %w", host, err)
	}
	for _, a := range addrs {
		if ip4 := a.IP.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	return nil, fmt.Errorf("resolve: no usable IPv4 address for %q", host)
}

// ReverseLookup resolves addr back to a hostname for display purposes.
// Callers (the Formatter) are expected to fall back to the bare address
// string on error rather than treat this as fatal.
func (r *Resolver) ReverseLookup(ctx context.Context, addr net.IP) (string, error) {
	names, err := r.reverse(ctx, addr.String())
	if err != nil || len(names) == 0 {
		return "", fmt.Errorf("resolve: reverse lookup %q: %w", addr, err)
	}
	return names[0], nil
}
