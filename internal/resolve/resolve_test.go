package resolve

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDottedIPv4BypassesDNS(t *testing.T) {
	r := New()
	ip, err := r.Resolve(context.Background(), "93.184.216.34")
	require.NoError(t, err)
	require.True(t, ip.Equal(net.IPv4(93, 184, 216, 34)))
}

func TestResolvePrefersIPv4(t *testing.T) {
	r := &Resolver{
		lookup: func(ctx context.Context, network, host string) ([]net.IPAddr, error) {
			return []net.IPAddr{
				{IP: net.ParseIP("2001:db8::1")},
				{IP: net.IPv4(10, 0, 0, 5)},
			}, nil
		},
	}
	ip, err := r.Resolve(context.Background(), "example.test")
	require.NoError(t, err)
	require.True(t, ip.Equal(net.IPv4(10, 0, 0, 5)))
}

func TestResolveFailurePropagates(t *testing.T) {
	r := &Resolver{
		lookup: func(ctx context.Context, network, host string) ([]net.IPAddr, error) {
			return nil, errors.New("no such host")
		},
	}
	_, err := r.Resolve(context.Background(), "nope.invalid")
	require.Error(t, err)
}

func TestReverseLookupFailurePropagates(t *testing.T) {
	r := &Resolver{
		reverse: func(ctx context.Context, addr string) ([]string, error) {
			return nil, errors.New("no ptr record")
		},
	}
	_, err := r.ReverseLookup(context.Background(), net.IPv4(10, 0, 0, 1))
	require.Error(t, err)
}

func TestReverseLookupReturnsFirstName(t *testing.T) {
	r := &Resolver{
		reverse: func(ctx context.Context, addr string) ([]string, error) {
			return []string{"gw.example.test.", "alt.example.test."}, nil
		},
	}
	name, err := r.ReverseLookup(context.Background(), net.IPv4(10, 0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, "gw.example.test.", name)
}
