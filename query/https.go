package query

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/quic-go/quic-go"
	quichttp3 "github.com/quic-go/quic-go/http3"
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"

	"github.com/xtls/dnsquery/common/log"
	"github.com/xtls/dnsquery/wire"
)

const dohDialTimeout = 2 * time.Second

// HTTPS sends q as a DNS-over-HTTPS request. HTTPVersion picks the
// transport; VersionDefault tries HTTP/2, then HTTP/1.1, then HTTP/3, using
// the first that establishes a connection. Per the reference client, the
// HTTP/3 and HTTP/2 paths force the query's id to 0 before marshaling, the
// HTTP/1.1 path does not — this is a deliberate transport-specific quirk,
// not an oversight, and must not be generalized away.
func HTTPS(ctx context.Context, q []byte, where string, opts ...Option) (*Response, error) {
	o := newOptions(443)
	for _, opt := range opts {
		opt(o)
	}

	query := wire.ParseMessage(q)
	exp := withCtxDeadline(ctx, expirationFromTimeout(o.timeout))
	begin := time.Now()
	host := where
	if o.bootstrapAddress != "" {
		host = o.bootstrapAddress
	}
	url := fmt.Sprintf("https://%s:%d%s", host, o.port, o.path)

	versions := []HTTPVersion{o.httpVersion}
	if o.httpVersion == VersionDefault {
		versions = []HTTPVersion{Version2, Version1, Version3}
	}

	var lastErr error
	for _, v := range versions {
		wireBytes, err := marshalForHTTPVersion(q, v)
		if err != nil {
			return nil, err
		}
		resp, err := dohRoundTrip(ctx, v, url, where, wireBytes, o, exp)
		if err != nil {
			lastErr = err
			continue
		}
		reply := wire.ParseMessage(resp)
		if reply.Err != nil {
			lastErr = reply.Err
			continue
		}
		if err := isResponseTo(query, reply); err != nil {
			lastErr = err
			continue
		}
		log.Record(&log.QueryLog{Transport: "DoH", Server: where, Status: log.StatusReceived, Elapsed: time.Since(begin)})
		return newResponse(reply, begin), nil
	}
	return nil, lastErr
}

// marshalForHTTPVersion re-encodes q with id forced to 0 for HTTP/2 and
// HTTP/3, left untouched for HTTP/1.1.
func marshalForHTTPVersion(q []byte, v HTTPVersion) ([]byte, error) {
	wireBytes := append([]byte(nil), q...)
	if v != Version1 && len(wireBytes) >= 2 {
		wireBytes[0], wireBytes[1] = 0, 0
	}
	return wireBytes, nil
}

func dohRoundTrip(ctx context.Context, v HTTPVersion, url, where string, wireBytes []byte, o *options, exp expiration) ([]byte, error) {
	attemptExp := perAttemptCap(exp, dohDialTimeout)
	client, err := dohClient(v, where, o, attemptExp)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := exp.context(ctx)
	defer cancel()

	var req *http.Request
	if o.post {
		req, err = http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(wireBytes))
		if err == nil {
			req.Header.Set("Content-Type", "application/dns-message")
		}
	} else {
		encoded := base64.RawURLEncoding.EncodeToString(wireBytes)
		req, err = http.NewRequestWithContext(reqCtx, http.MethodGet, url+"?dns="+encoded, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/dns-message")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError("DoH server ", where, " returned status ", strconv.Itoa(resp.StatusCode), ": ", string(body))
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// dohClient builds a fresh http.Client pinned to one HTTP version, dialing
// through utls for 1.1/2 and through quic-go's http3.RoundTripper for 3.
// attemptExp caps the connection-establishment phase (dial plus handshake)
// independently of the overall request deadline, per the reference
// client's shorter cap on DoH connection attempts.
func dohClient(v HTTPVersion, where string, o *options, attemptExp expiration) (*http.Client, error) {
	if v == Version3 {
		tlsConf, err := buildGoTLSConfig(o, where)
		if err != nil {
			return nil, err
		}
		tlsConf.NextProtos = []string{"h3"}
		quicConf := &quic.Config{HandshakeIdleTimeout: time.Until(attemptExp.at)}
		return &http.Client{
			Transport: &quichttp3.RoundTripper{
				QUICConfig:      quicConf,
				TLSClientConfig: tlsConf,
			},
		}, nil
	}

	uConfig, err := buildUTLSConfig(o, where)
	if err != nil {
		return nil, err
	}
	uConfig.NextProtos = []string{"http/1.1"}
	if v == Version2 {
		uConfig.NextProtos = []string{"h2", "http/1.1"}
	}

	dial := func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
		dialCtx, cancel := attemptExp.context(ctx)
		defer cancel()
		network = networkForFamily(network, o.family)
		dialer := &net.Dialer{}
		raw, err := dialer.DialContext(dialCtx, network, addr)
		if err != nil {
			return nil, err
		}
		uconn := utls.UClient(raw, uConfig, utls.HelloChrome_Auto)
		if err := uconn.HandshakeContext(dialCtx); err != nil {
			raw.Close()
			return nil, err
		}
		return uconn, nil
	}

	if v == Version1 {
		return &http.Client{Transport: &http.Transport{DialTLSContext: dial}}, nil
	}
	return &http.Client{Transport: &http2.Transport{DialTLSContext: dial}}, nil
}
