package query

import (
	"crypto/tls"
	"net"
	"time"
)

// HTTPVersion selects which HTTP generation a DoH request rides over.
// VersionDefault picks the first available of HTTP/2, HTTP/1.1, HTTP/3, in
// that order, mirroring the reference client's negotiation order.
type HTTPVersion int

const (
	VersionDefault HTTPVersion = iota
	Version1
	Version2
	Version3
)

// Family constrains which address family a transport resolves "where" to
// when "where" is a hostname rather than a literal address.
type Family int

const (
	FamilyUnspec Family = iota
	FamilyINET
	FamilyINET6
)

// options collects every per-call knob named in the transport signatures.
// Transports start from defaults and apply Options in order; an Option that
// does not apply to a given transport is simply ignored by it.
type options struct {
	port    uint16
	timeout *time.Duration

	source     net.IP
	sourcePort uint16

	ignoreUnexpected bool
	oneRRPerRRset    bool
	ignoreTrailing   bool
	raiseOnTrunc     bool
	ignoreErrors     bool

	udpConn  net.PacketConn
	tcpConn  net.Conn
	quicConn quicSessioner

	tlsConfig      *tls.Config
	serverHostname string
	verify         interface{} // bool or string, matching the spec's tri-state verify

	path             string
	post             bool
	bootstrapAddress string
	family           Family
	httpVersion      HTTPVersion
}

func newOptions(defaultPort uint16) *options {
	return &options{port: defaultPort, post: true, path: "/dns-query", verify: true}
}

// Option configures a single query call. Each transport function documents
// which Options it honors.
type Option func(*options)

func WithPort(port uint16) Option { return func(o *options) { o.port = port } }

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = &d }
}

func WithSource(ip net.IP) Option { return func(o *options) { o.source = ip } }

func WithSourcePort(port uint16) Option { return func(o *options) { o.sourcePort = port } }

func WithIgnoreUnexpected(v bool) Option { return func(o *options) { o.ignoreUnexpected = v } }

func WithOneRRPerRRset(v bool) Option { return func(o *options) { o.oneRRPerRRset = v } }

func WithIgnoreTrailing(v bool) Option { return func(o *options) { o.ignoreTrailing = v } }

func WithRaiseOnTruncation(v bool) Option { return func(o *options) { o.raiseOnTrunc = v } }

func WithIgnoreErrors(v bool) Option { return func(o *options) { o.ignoreErrors = v } }

// WithUDPSocket supplies a pre-bound, caller-owned non-blocking datagram
// socket; the library will not close it.
func WithUDPSocket(c net.PacketConn) Option { return func(o *options) { o.udpConn = c } }

// WithTCPSocket supplies a pre-connected, caller-owned stream socket; the
// library will not close it.
func WithTCPSocket(c net.Conn) Option { return func(o *options) { o.tcpConn = c } }

// WithQUICConnection supplies a pre-established, caller-owned QUIC
// connection to reuse across queries.
func WithQUICConnection(c quicSessioner) Option { return func(o *options) { o.quicConn = c } }

// WithTLSConfig supplies a caller-built *tls.Config outright, overriding
// WithVerify/WithServerHostname.
func WithTLSConfig(c *tls.Config) Option { return func(o *options) { o.tlsConfig = c } }

func WithServerHostname(name string) Option { return func(o *options) { o.serverHostname = name } }

// WithVerify accepts true (default CA bundle), false (no verification), or
// a string naming a CA file or directory.
func WithVerify(v interface{}) Option { return func(o *options) { o.verify = v } }

func WithPath(path string) Option { return func(o *options) { o.path = path } }

func WithPost(post bool) Option { return func(o *options) { o.post = post } }

func WithBootstrapAddress(addr string) Option {
	return func(o *options) { o.bootstrapAddress = addr }
}

func WithFamily(f Family) Option { return func(o *options) { o.family = f } }

func WithHTTPVersion(v HTTPVersion) Option { return func(o *options) { o.httpVersion = v } }
