// Package query drives DNS messages over the wire: UDP, TCP, DoT, DoH and
// DoQ, plus the shared deadline and destination-resolution plumbing every
// transport needs before it ever touches a socket.
package query

import (
	"fmt"

	"github.com/xtls/dnsquery/common/errors"
)

// TruncatedError reports a UDP reply with the TC bit set. It carries the
// partial header so a caller can still confirm the reply matched its query
// before deciding whether to retry over TCP.
type TruncatedError struct {
	ID, Flags uint16
}

func (e *TruncatedError) Error() string { return "the DNS response is truncated" }

// UnexpectedSourceError reports a UDP datagram from a peer other than the
// one the query was sent to.
type UnexpectedSourceError struct {
	Got string
}

func (e *UnexpectedSourceError) Error() string {
	return fmt.Sprintf("got a reply from %s instead of the expected destination", e.Got)
}

// BadResponseError reports a reply that parsed cleanly but does not answer
// the query that was sent: a mismatched id, opcode, or question.
type BadResponseError struct {
	Reason string
}

func (e *BadResponseError) Error() string { return "response " + e.Reason }

// UseTCPError names the zone-transfer TCP-fallback signal in this package's
// error taxonomy. The xfr engine recognises only its own xfr.UseTCPError, not
// this type: an Inbound handler returning this type ends the transfer with it
// as an ordinary error.
type UseTCPError struct{}

func (e *UseTCPError) Error() string { return "IXFR response requires switching to TCP" }

// NoDOHError / NoDOQError report a requested transport that is unavailable
// at build time; neither is returned today since both DoH and DoQ are
// always wired in, but are kept as the named boundary kinds the
// specification distinguishes.
type NoDOHError struct{ Reason string }

func (e *NoDOHError) Error() string { return "DNS-over-HTTPS unavailable: " + e.Reason }

type NoDOQError struct{ Reason string }

func (e *NoDOQError) Error() string { return "DNS-over-QUIC unavailable: " + e.Reason }

// ValueError reports caller misuse: incompatible address families, no
// address of the requested family, or a verify value that is neither a bool
// nor a path naming a file or directory. AXFR forced over UDP is reported by
// the xfr package's own ValueError.
type ValueError struct{ Reason string }

func (e *ValueError) Error() string { return e.Reason }

func valueError(reason string) error { return &ValueError{Reason: reason} }

// TimeoutError reports that the deadline passed before the operation
// completed.
type TimeoutError struct{}

func (e *TimeoutError) Error() string { return "the operation did not complete within the specified time" }

var errTimeout = &TimeoutError{}

func newError(values ...interface{}) *errors.Error {
	return errors.New(values...)
}
