package query

import (
	"context"
	"net"
	"time"

	"github.com/xtls/dnsquery/common/buf"
	"github.com/xtls/dnsquery/common/log"
	"github.com/xtls/dnsquery/wire"
)

// UDP sends q to where and returns the first reply that looks like an
// answer to it. A datagram from an unexpected source fails the call with
// *UnexpectedSourceError, unless WithIgnoreUnexpected is set, in which case
// it is discarded and the wait continues; malformed or mismatched datagrams are
// likewise skipped when WithIgnoreErrors is set, looping until a valid
// reply arrives or the deadline expires.
func UDP(ctx context.Context, q []byte, where string, opts ...Option) (*Response, error) {
	o := newOptions(53)
	for _, opt := range opts {
		opt(o)
	}

	query := wire.ParseMessage(q)
	resolved, err := resolveUDP(where, o.port, o.source, o.sourcePort, o.family)
	if err != nil {
		return nil, err
	}

	conn := o.udpConn
	owned := conn == nil
	if owned {
		laddr := ""
		if resolved.local != nil {
			laddr = resolved.local.String()
		}
		pc, err := net.ListenPacket(udpNetwork(resolved.remote.IP), laddr)
		if err != nil {
			return nil, err
		}
		conn = pc
		defer pc.Close()
	}

	exp := withCtxDeadline(ctx, expirationFromTimeout(o.timeout))
	begin := time.Now()

	for {
		if exp.expired() {
			return nil, errTimeout
		}
		if err := setConnDeadline(conn.SetWriteDeadline, exp); err != nil {
			return nil, err
		}
		if _, err := conn.WriteTo(q, resolved.remote); err != nil {
			return nil, err
		}
		log.Record(&log.QueryLog{Transport: "UDP", Server: where, Status: log.StatusSent})
		break
	}

	for {
		if exp.expired() {
			log.Record(&log.QueryLog{Transport: "UDP", Server: where, Status: log.StatusTimeout, Elapsed: time.Since(begin)})
			return nil, errTimeout
		}
		if err := setConnDeadline(conn.SetReadDeadline, exp); err != nil {
			return nil, err
		}

		raw := make([]byte, buf.Size)
		n, from, err := conn.ReadFrom(raw)
		if err != nil {
			if isTimeoutErr(err) {
				log.Record(&log.QueryLog{Transport: "UDP", Server: where, Status: log.StatusTimeout, Elapsed: time.Since(begin)})
				return nil, errTimeout
			}
			return nil, err
		}

		udpFrom, ok := from.(*net.UDPAddr)
		if !ok {
			udpFrom, _ = net.ResolveUDPAddr("udp", from.String())
		}
		if udpFrom == nil || !sourceMatches(resolved.remote, udpFrom) {
			if o.ignoreUnexpected {
				continue
			}
			return nil, &UnexpectedSourceError{Got: from.String()}
		}

		reply := wire.ParseMessage(append([]byte(nil), raw[:n]...))
		if reply.Err != nil {
			if o.ignoreErrors {
				continue
			}
			log.Record(&log.QueryLog{Transport: "UDP", Server: where, Status: log.StatusBadReply, Elapsed: time.Since(begin), Error: reply.Err})
			return nil, reply.Err
		}
		if err := isResponseTo(query, reply); err != nil {
			if o.ignoreErrors {
				continue
			}
			log.Record(&log.QueryLog{Transport: "UDP", Server: where, Status: log.StatusBadReply, Elapsed: time.Since(begin), Error: err})
			return nil, err
		}
		if o.raiseOnTrunc && reply.Flags&0x0200 != 0 {
			return nil, &TruncatedError{ID: reply.ID, Flags: reply.Flags}
		}

		log.Record(&log.QueryLog{Transport: "UDP", Server: where, Status: log.StatusReceived, Elapsed: time.Since(begin)})
		return newResponse(reply, begin), nil
	}
}

// UDPWithFallback sends q over UDP with truncation detection enabled; if
// the reply is truncated it retries the same query over TCP. The returned
// bool reports whether TCP was used.
func UDPWithFallback(ctx context.Context, q []byte, where string, opts ...Option) (*Response, bool, error) {
	udpOpts := append(append([]Option{}, opts...), WithRaiseOnTruncation(true))
	resp, err := UDP(ctx, q, where, udpOpts...)
	if err == nil {
		return resp, false, nil
	}
	if _, ok := err.(*TruncatedError); !ok {
		return nil, false, err
	}
	log.Record(&log.QueryLog{Transport: "UDP", Server: where, Status: log.StatusFallback})
	resp, err = TCP(ctx, q, where, opts...)
	return resp, true, err
}

func udpNetwork(ip net.IP) string {
	if isIPv4(ip) {
		return "udp4"
	}
	return "udp6"
}

func isTimeoutErr(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
