package query

import (
	"context"
	"time"
)

// expiration is an absolute deadline, the Go stand-in for dnspython's
// expiration-timestamp discipline: every suspension point recomputes
// "remaining = expiration - now" rather than reusing a relative duration
// captured once at the top of a call, so retries cannot silently drift past
// the caller's real budget.
type expiration struct {
	at      time.Time
	unbound bool
}

// noExpiration means "wait forever", dnspython's None timeout.
var noExpiration = expiration{unbound: true}

// expirationFromTimeout turns a caller-supplied relative timeout into an
// absolute deadline anchored to now. A nil timeout means no deadline.
func expirationFromTimeout(timeout *time.Duration) expiration {
	if timeout == nil {
		return noExpiration
	}
	return expiration{at: time.Now().Add(*timeout)}
}

// remaining returns how long is left before the deadline, or a large
// duration if unbound. It never returns a duration callers should treat as
// "already expired" without checking expired() first.
func (e expiration) remaining() time.Duration {
	if e.unbound {
		return 365 * 24 * time.Hour
	}
	return time.Until(e.at)
}

// expired reports whether the deadline has already passed.
func (e expiration) expired() bool {
	return !e.unbound && !e.at.After(time.Now())
}

// context derives a context.Context carrying this deadline, the idiomatic
// Go vehicle for the same absolute-deadline contract net.Conn.SetDeadline
// expresses at the socket level.
func (e expiration) context(parent context.Context) (context.Context, context.CancelFunc) {
	if e.unbound {
		return context.WithCancel(parent)
	}
	return context.WithDeadline(parent, e.at)
}

// setConnDeadline pushes this expiration onto a net.Conn-shaped deadline
// setter (net.Conn, and tls.Conn, share this signature).
func setConnDeadline(setDeadline func(time.Time) error, e expiration) error {
	if e.unbound {
		return setDeadline(time.Time{})
	}
	return setDeadline(e.at)
}

// withCtxDeadline narrows e to whichever of e and ctx's own deadline comes
// first, so a caller-supplied context.Context and an explicit timeout
// Option compose instead of one silently overriding the other.
func withCtxDeadline(ctx context.Context, e expiration) expiration {
	d, ok := ctx.Deadline()
	if !ok {
		return e
	}
	if e.unbound || d.Before(e.at) {
		return expiration{at: d}
	}
	return e
}

// perAttemptCap clamps an expiration to no more than d from now, used by
// DoH's connection-establishment phase which the specification calls out as
// wanting a shorter cap than the caller's overall timeout.
func perAttemptCap(e expiration, d time.Duration) expiration {
	capped := expiration{at: time.Now().Add(d)}
	if !e.unbound && e.at.Before(capped.at) {
		return e
	}
	return capped
}
