package wire

import "errors"

// Sentinel errors for the codec layer. All are comparable with
// errors.Is. Per the core's error-handling policy, parse failures
// built from these are never panics — the receive-and-filter loop
// treats any of them as "not ours" and moves on to the next packet.
var (
	// ErrInvalidBufferSize is returned when a buffer is too short to
	// hold (or receive) the header being parsed or built.
	ErrInvalidBufferSize = errors.New("wire: invalid buffer size")
	// ErrInvalidVersion is returned when an IPv4 header's version
	// nibble is not 4.
	ErrInvalidVersion = errors.New("wire: invalid ip version")
	// ErrInvalidHeaderSize is returned when an IPv4 header's IHL claims
	// a header longer than the buffer actually holds.
	ErrInvalidHeaderSize = errors.New("wire: invalid ip header size")
	// ErrChecksumFailed is returned by VerifyICMPStrict when the computed
	// checksum over a datagram is non-zero.
	ErrChecksumFailed = errors.New("wire: checksum verification failed")
	// ErrUnsupportedProtocol is returned when a numeric IP protocol
	// value isn't one ParseProtocol recognizes.
	ErrUnsupportedProtocol = errors.New("wire: unsupported ip protocol")
)
