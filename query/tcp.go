package query

import (
	"context"
	"encoding/binary"
	"net"
	"time"

	"github.com/xtls/dnsquery/common/buf"
	"github.com/xtls/dnsquery/common/log"
	"github.com/xtls/dnsquery/wire"
)

// TCP sends q over a length-prefixed TCP stream and returns the parsed
// reply. It connects a new socket unless WithTCPSocket supplied one, in
// which case that socket is used as-is and never closed by this call.
func TCP(ctx context.Context, q []byte, where string, opts ...Option) (*Response, error) {
	o := newOptions(53)
	for _, opt := range opts {
		opt(o)
	}

	query := wire.ParseMessage(q)
	exp := withCtxDeadline(ctx, expirationFromTimeout(o.timeout))
	begin := time.Now()

	conn := o.tcpConn
	owned := conn == nil
	if owned {
		remote, local, err := resolveTCP(where, o.port, o.source, o.sourcePort, o.family)
		if err != nil {
			return nil, err
		}
		dialer := &net.Dialer{LocalAddr: local, Deadline: exp.at}
		if exp.unbound {
			dialer.Deadline = time.Time{}
		}
		c, err := dialer.DialContext(ctx, "tcp", remote.String())
		if err != nil {
			return nil, err
		}
		conn = c
		defer c.Close()
	}

	reply, err := tcpRoundTrip(conn, q, exp, o.oneRRPerRRset, o.ignoreTrailing)
	if err != nil {
		return nil, err
	}
	if err := isResponseTo(query, reply); err != nil {
		return nil, err
	}

	log.Record(&log.QueryLog{Transport: "TCP", Server: where, Status: log.StatusReceived, Elapsed: time.Since(begin)})
	return newResponse(reply, begin), nil
}

// tcpRoundTrip performs one length-prefixed write/read cycle over an
// already-connected stream socket, shared by the TCP and TLS transports.
func tcpRoundTrip(conn net.Conn, q []byte, exp expiration, oneRRPerRRset, ignoreTrailing bool) (*wire.Message, error) {
	if err := setConnDeadline(conn.SetWriteDeadline, exp); err != nil {
		return nil, err
	}
	frame := make([]byte, 2+len(q))
	binary.BigEndian.PutUint16(frame, uint16(len(q)))
	copy(frame[2:], q)
	if _, err := conn.Write(frame); err != nil {
		return nil, err
	}

	if err := setConnDeadline(conn.SetReadDeadline, exp); err != nil {
		return nil, err
	}
	lengthBuf := buf.New()
	defer lengthBuf.Release()
	if _, err := lengthBuf.ReadFullFrom(conn, 2); err != nil {
		return nil, err
	}
	length := int(binary.BigEndian.Uint16(lengthBuf.Bytes()))

	body := buf.New()
	defer body.Release()
	if err := setConnDeadline(conn.SetReadDeadline, exp); err != nil {
		return nil, err
	}
	if _, err := body.ReadFullFrom(conn, length); err != nil {
		return nil, err
	}

	reply := wire.ParseMessage(append([]byte(nil), body.Bytes()...))
	if reply.Err != nil {
		return nil, reply.Err
	}
	if !ignoreTrailing && reply.TrailingOffset != nil {
		return nil, newError("unexpected trailing data after DNS message").AtWarning()
	}
	return reply, nil
}
