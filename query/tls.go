package query

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"time"

	utls "github.com/refraction-networking/utls"

	"github.com/xtls/dnsquery/common/log"
	"github.com/xtls/dnsquery/wire"
)

// TLS sends q over DNS-over-TLS: a TCP connection wrapped in a TLS session
// negotiated with ALPN "dot" and a minimum protocol version of 1.2.
func TLS(ctx context.Context, q []byte, where string, opts ...Option) (*Response, error) {
	o := newOptions(853)
	for _, opt := range opts {
		opt(o)
	}

	query := wire.ParseMessage(q)
	exp := withCtxDeadline(ctx, expirationFromTimeout(o.timeout))
	begin := time.Now()

	var conn net.Conn
	owned := o.tcpConn == nil
	if owned {
		remote, local, err := resolveTCP(where, o.port, o.source, o.sourcePort, o.family)
		if err != nil {
			return nil, err
		}
		dialer := &net.Dialer{LocalAddr: local}
		if !exp.unbound {
			dialer.Deadline = exp.at
		}
		tcpConn, err := dialer.DialContext(ctx, "tcp", remote.String())
		if err != nil {
			return nil, err
		}
		conn = tcpConn
	} else {
		conn = o.tcpConn
	}
	if owned {
		defer conn.Close()
	}

	uConfig, err := buildUTLSConfig(o, where)
	if err != nil {
		if owned {
			conn.Close()
		}
		return nil, err
	}

	uconn := utls.UClient(conn, uConfig, utls.HelloChrome_Auto)
	if err := setConnDeadline(conn.SetDeadline, exp); err != nil {
		return nil, err
	}
	handshakeCtx, cancel := exp.context(ctx)
	defer cancel()
	if err := uconn.HandshakeContext(handshakeCtx); err != nil {
		return nil, err
	}

	reply, err := tcpRoundTrip(uconn, q, exp, o.oneRRPerRRset, o.ignoreTrailing)
	if err != nil {
		return nil, err
	}
	if err := isResponseTo(query, reply); err != nil {
		return nil, err
	}

	log.Record(&log.QueryLog{Transport: "DoT", Server: where, Status: log.StatusReceived, Elapsed: time.Since(begin)})
	return newResponse(reply, begin), nil
}

// buildUTLSConfig applies the tri-state verify semantics shared by DoT and
// DoH: true uses the system root pool, false disables verification
// entirely, and a string names a CA file or directory to trust instead.
// When no server name is given and where is an address literal, certificate
// verification is skipped entirely (InsecureSkipVerify), not only the
// hostname check; see resolveVerify.
func buildUTLSConfig(o *options, where string) (*utls.Config, error) {
	if o.tlsConfig != nil {
		return &utls.Config{
			ServerName:         o.tlsConfig.ServerName,
			MinVersion:         o.tlsConfig.MinVersion,
			NextProtos:         append([]string(nil), o.tlsConfig.NextProtos...),
			InsecureSkipVerify: o.tlsConfig.InsecureSkipVerify,
			RootCAs:            o.tlsConfig.RootCAs,
		}, nil
	}
	hostname := o.serverHostname
	if hostname == "" {
		hostname = where
	}
	insecure, pool, err := resolveVerify(o, where)
	if err != nil {
		return nil, err
	}
	return &utls.Config{
		ServerName:         hostname,
		MinVersion:         tls.VersionTLS12,
		NextProtos:         []string{"dot"},
		InsecureSkipVerify: insecure,
		RootCAs:            pool,
	}, nil
}

// buildGoTLSConfig is buildUTLSConfig's counterpart for stacks that take a
// stdlib *tls.Config directly (QUIC's handshake is driven entirely inside
// quic-go, which has no hook for a ClientHello fingerprint substitute).
func buildGoTLSConfig(o *options, where string) (*tls.Config, error) {
	if o.tlsConfig != nil {
		return o.tlsConfig.Clone(), nil
	}
	hostname := o.serverHostname
	if hostname == "" {
		hostname = where
	}
	insecure, pool, err := resolveVerify(o, where)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		ServerName:         hostname,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecure,
		RootCAs:            pool,
	}, nil
}

// resolveVerify implements the tri-state verify contract shared by DoT,
// DoQ and DoH: true trusts the system root pool, false disables
// verification, and a string names a CA file or directory to trust
// instead. When the caller gave no server hostname and where is an address
// literal, insecure is true whatever verify says: the certificate is not
// verified at all. There is no mode that skips only the hostname check while
// still verifying the certificate chain. With a DNS name as where, that name
// is the server name the certificate is checked against.
func resolveVerify(o *options, where string) (insecure bool, pool *x509.CertPool, err error) {
	insecure = o.serverHostname == "" && net.ParseIP(where) != nil

	switch v := o.verify.(type) {
	case bool:
		return insecure || !v, nil, nil
	case string:
		pool, err = loadCAPool(v)
		return insecure, pool, err
	default:
		return false, nil, valueError("verify must be a bool or a path to a CA file/directory")
	}
}

func loadCAPool(path string) (*x509.CertPool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, valueError("verify path is neither a file nor a directory: " + path)
	}
	pool := x509.NewCertPool()
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := os.ReadFile(path + "/" + e.Name())
			if err == nil {
				pool.AppendCertsFromPEM(data)
			}
		}
		return pool, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool.AppendCertsFromPEM(data)
	return pool, nil
}
