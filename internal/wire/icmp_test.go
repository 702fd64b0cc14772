package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseICMPTooShort(t *testing.T) {
	_, err := ParseICMP(make([]byte, 7))
	require.ErrorIs(t, err, ErrInvalidBufferSize)
}

func TestBuildICMPRegression(t *testing.T) {
	b := ICMPBuilder{Type: ICMPType(20), Code: 0, Identifier: 2020, Sequence: 24}
	buf := make([]byte, 8)
	n, err := b.Build(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, []byte{20, 0, 228, 3, 7, 228, 0, 24}, buf)
}

func TestBuildICMPTooSmallBuffer(t *testing.T) {
	b := ICMPBuilder{Type: ICMPTypeEchoRequest}
	_, err := b.Build(make([]byte, 3))
	require.ErrorIs(t, err, ErrInvalidBufferSize)
}

func TestBuildParseRoundTrip(t *testing.T) {
	cases := []ICMPBuilder{
		{Type: ICMPTypeEchoRequest, Code: 0, Identifier: 0xBEEF, Sequence: 1, Payload: []byte("hello, world")},
		{Type: ICMPTypeEchoReply, Code: 0, Identifier: 42, Sequence: 7},
		{Type: ICMPType(200), Code: 3, Identifier: 1, Sequence: 65535, Payload: make([]byte, 32)},
	}
	for _, q := range cases {
		buf := make([]byte, 8+len(q.Payload))
		n, err := q.Build(buf)
		require.NoError(t, err)

		parsed, err := ParseICMP(buf[:n])
		require.NoError(t, err)
		require.Equal(t, q.Type, parsed.Type)
		require.Equal(t, q.Identifier, parsed.Identifier)
		require.Equal(t, q.Sequence, parsed.Sequence)
		if len(q.Payload) == 0 {
			require.Empty(t, parsed.Payload)
		} else {
			require.Equal(t, q.Payload, parsed.Payload)
		}

		sum, err := VerifyICMP(buf[:n])
		require.NoError(t, err)
		require.Zero(t, sum)
	}
}

func TestICMPTypeUnknownStringifiesAsUnknown(t *testing.T) {
	require.Equal(t, "unknown", ICMPType(200).String())
	require.Equal(t, "echo-reply", ICMPTypeEchoReply.String())
}
