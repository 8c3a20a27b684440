package query

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/quic-go/quic-go"

	utls "github.com/refraction-networking/utls"

	"github.com/xtls/dnsquery/common/buf"
	"github.com/xtls/dnsquery/common/log"
	"github.com/xtls/dnsquery/wire"
)

// nextProtoDoQ is the ALPN token DNS-over-QUIC negotiates during the TLS
// handshake (RFC 9250).
const nextProtoDoQ = "doq"

const quicHandshakeTimeout = 8 * time.Second

// quicSessioner is the subset of quic.Connection this package needs, so callers
// can inject a pre-established connection (WithQUICConnection) without this
// package depending on quic-go's exact connection type at the API surface.
type quicSessioner interface {
	OpenStreamSync(ctx context.Context) (quic.Stream, error)
	Context() context.Context
	CloseWithError(quic.ApplicationErrorCode, string) error
}

// QUIC sends q over DNS-over-QUIC: one bidirectional stream per query,
// length-prefixed like TCP, with the stream's write side closed (FIN) right
// after the request is flushed. Per RFC 9250 the message id is forced to 0.
func QUIC(ctx context.Context, q []byte, where string, opts ...Option) (*Response, error) {
	o := newOptions(853)
	for _, opt := range opts {
		opt(o)
	}

	wireBytes := append([]byte(nil), q...)
	if len(wireBytes) >= 2 {
		wireBytes[0], wireBytes[1] = 0, 0
	}
	query := wire.ParseMessage(wireBytes)

	begin := time.Now()
	exp := withCtxDeadline(ctx, expirationFromTimeout(o.timeout))

	conn := o.quicConn
	owned := conn == nil
	if owned {
		c, err := dialQUIC(ctx, where, o)
		if err != nil {
			return nil, err
		}
		conn = c
		defer conn.CloseWithError(0, "")
	}

	streamCtx, cancel := exp.context(ctx)
	defer cancel()
	stream, err := conn.OpenStreamSync(streamCtx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if dl, ok := streamCtx.Deadline(); ok {
		_ = stream.SetWriteDeadline(dl)
		_ = stream.SetReadDeadline(dl)
	}

	frame := make([]byte, 2+len(wireBytes))
	binary.BigEndian.PutUint16(frame, uint16(len(wireBytes)))
	copy(frame[2:], wireBytes)
	if _, err := stream.Write(frame); err != nil {
		return nil, err
	}
	if err := stream.Close(); err != nil {
		return nil, err
	}

	respBuf := buf.New()
	defer respBuf.Release()
	if _, err := respBuf.ReadFullFrom(stream, 2); err != nil {
		return nil, err
	}
	length := int(binary.BigEndian.Uint16(respBuf.Bytes()))

	body := buf.New()
	defer body.Release()
	if _, err := body.ReadFullFrom(stream, length); err != nil && err != io.EOF {
		return nil, err
	}

	reply := wire.ParseMessage(append([]byte(nil), body.Bytes()...))
	if reply.Err != nil {
		return nil, reply.Err
	}
	if err := isResponseTo(query, reply); err != nil {
		return nil, err
	}

	log.Record(&log.QueryLog{Transport: "DoQ", Server: where, Status: log.StatusReceived, Elapsed: time.Since(begin)})
	return newResponse(reply, begin), nil
}

func dialQUIC(ctx context.Context, where string, o *options) (quic.Connection, error) {
	tlsConf, err := buildGoTLSConfig(o, where)
	if err != nil {
		return nil, err
	}
	tlsConf.NextProtos = []string{nextProtoDoQ}

	quicConf := &quic.Config{HandshakeIdleTimeout: quicHandshakeTimeout}

	addr := joinHostPort(where, o.port)
	return quic.DialAddr(ctx, addr, tlsConf, quicConf)
}
