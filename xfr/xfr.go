// Package xfr drives the AXFR/IXFR zone-transfer state machine: it owns the
// socket for the life of a transfer, feeds every parsed response to an
// externally supplied Inbound handler, and exposes the result as a pull
// iterator so a caller without coroutine/generator primitives can still
// consume it message by message.
package xfr

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/xtls/dnsquery/common/buf"
	"github.com/xtls/dnsquery/common/errors"
	"github.com/xtls/dnsquery/common/log"
	"github.com/xtls/dnsquery/wire"
)

// Kind distinguishes a full zone transfer from an incremental one.
type Kind int

const (
	KindAXFR Kind = iota
	KindIXFR
)

func (k Kind) String() string {
	if k == KindIXFR {
		return "ixfr"
	}
	return "axfr"
}

// UDPMode controls whether an IXFR is attempted over UDP before falling
// back to TCP. AXFR never runs over UDP: AXFR with UDPModeOnly is a caller
// error, and AXFR with UDPModeTryFirst runs over TCP from the start.
type UDPMode int

const (
	UDPModeNever UDPMode = iota
	UDPModeTryFirst
	UDPModeOnly
)

// TransactionManager is the external collaborator that owns zone storage
// and knows how to turn transferred records into committed state. This
// package only asks it for the transfer's identity; applying records is
// entirely its concern.
type TransactionManager interface {
	Origin() wire.Name
	Class() uint16
}

// Inbound consumes one parsed transfer message at a time. Put returns
// done=true once the transfer is complete, or a *UseTCPError to demand
// fallback (only meaningful mid-IXFR-over-UDP).
type Inbound interface {
	Put(msg *wire.Message) (done bool, err error)
}

// UseTCPError is the internal signal an Inbound raises to force a restart
// of the transfer over TCP. It reaches a caller of Next, as a genuine error,
// only when the transfer is already running over TCP or the configured
// UDPMode was UDPModeOnly.
type UseTCPError struct{}

func (e *UseTCPError) Error() string { return "IXFR response requires switching to TCP" }

// ErrDone is returned by Next once the transfer has completed cleanly.
var ErrDone = errors.New("zone transfer complete").AtDebug()

// Config collects the inputs to a transfer: the pieces named in the
// specification's Setup step, plus resource limits. Query must already be a
// fully wire-encoded AXFR/IXFR request (this package, like query, never
// builds a message itself — it only moves bytes and parses replies).
type Config struct {
	Port          uint16
	Query         []byte
	Serial        uint32 // base serial for IXFR; ignored for AXFR
	Timeout       time.Duration
	Lifetime      time.Duration
	Source        net.IP
	SourcePort    uint16
	UDPMode       UDPMode
	OneRRPerRRset bool
}

// Transfer is a pull iterator over one zone transfer's messages. It owns
// the socket and restarts it internally on a UseTCP fallback; callers
// never see the restart, only a continued stream of messages from Next.
type Transfer struct {
	dest    string
	manager TransactionManager
	inbound Inbound
	kind    Kind
	cfg     Config

	query      []byte
	isIXFR     bool
	baseSerial uint32

	udpMode  UDPMode
	usingUDP bool

	conn           io.ReadWriteCloser
	udpConn        net.PacketConn
	udpRemote      *net.UDPAddr
	lifetimeEnd    time.Time
	hasLifetime    bool
	messagesServed int
	done           bool
	closed         bool

	tsigSeen bool
}

// New sets up a transfer per the specification's Setup/Attempt-choice
// steps: AXFR is never allowed over UDP, and an IXFR only considers UDP
// when cfg.UDPMode is not UDPModeNever.
func New(dest string, manager TransactionManager, inbound Inbound, kind Kind, cfg Config) (*Transfer, error) {
	if cfg.Port == 0 {
		cfg.Port = 53
	}
	isIXFR := kind == KindIXFR

	if len(cfg.Query) == 0 {
		return nil, &ValueError{Reason: "xfr: Config.Query must be a pre-built AXFR/IXFR request"}
	}

	t := &Transfer{
		dest: dest, manager: manager, inbound: inbound, kind: kind, cfg: cfg,
		isIXFR: isIXFR, baseSerial: cfg.Serial, udpMode: cfg.UDPMode,
		query: cfg.Query,
	}

	if kind == KindAXFR && cfg.UDPMode == UDPModeOnly {
		return nil, &ValueError{Reason: "AXFR cannot be forced over UDP"}
	}

	if cfg.Lifetime > 0 {
		t.lifetimeEnd = time.Now().Add(cfg.Lifetime)
		t.hasLifetime = true
	}

	if err := t.start(); err != nil {
		return nil, err
	}
	return t, nil
}

// ValueError mirrors query.ValueError for the caller-misuse cases this
// package itself detects (an empty Config.Query, AXFR forced over UDP); it does not import the
// query package to avoid a dependency cycle with the higher-level client.
type ValueError struct{ Reason string }

func (e *ValueError) Error() string { return e.Reason }

func (t *Transfer) start() error {
	useUDP := t.isIXFR && t.udpMode != UDPModeNever
	if useUDP {
		return t.startUDP()
	}
	return t.startTCP()
}

func (t *Transfer) startUDP() error {
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(t.dest, portStr(t.cfg.Port)))
	if err != nil {
		return err
	}
	laddr := ""
	if t.cfg.Source != nil {
		laddr = net.JoinHostPort(t.cfg.Source.String(), portStr(t.cfg.SourcePort))
	}
	pc, err := net.ListenPacket(udpNetwork(raddr.IP), laddr)
	if err != nil {
		return err
	}
	if _, err := pc.WriteTo(t.query, raddr); err != nil {
		pc.Close()
		return err
	}
	t.udpConn = pc
	t.udpRemote = raddr
	t.usingUDP = true
	return nil
}

func (t *Transfer) startTCP() error {
	laddr := &net.TCPAddr{}
	if t.cfg.Source != nil {
		laddr = &net.TCPAddr{IP: t.cfg.Source, Port: int(t.cfg.SourcePort)}
	}
	dialer := &net.Dialer{LocalAddr: laddr}
	conn, err := dialer.Dial("tcp", net.JoinHostPort(t.dest, portStr(t.cfg.Port)))
	if err != nil {
		return err
	}
	frame := make([]byte, 2+len(t.query))
	binary.BigEndian.PutUint16(frame, uint16(len(t.query)))
	copy(frame[2:], t.query)
	if _, err := conn.Write(frame); err != nil {
		conn.Close()
		return err
	}
	t.conn = conn
	t.usingUDP = false
	return nil
}

// Next advances the transfer by one message. It returns ErrDone once the
// Inbound handler reports completion, after which subsequent calls also
// return ErrDone. A *UseTCPError bubbling out of this call only happens
// when the transfer is running over TCP or UDPMode is UDPModeOnly; otherwise
// the fallback is handled internally
// and Next keeps yielding messages from the restarted TCP connection.
func (t *Transfer) Next(ctx context.Context) (*wire.Message, error) {
	if t.done {
		return nil, ErrDone
	}

	perMsg := t.perMessageDeadline()

	for {
		raw, err := t.readOneMessage(ctx, perMsg)
		if err != nil {
			return nil, err
		}

		msg := wire.ParseMessage(raw)
		if msg.Err != nil {
			return nil, msg.Err
		}
		t.messagesServed++
		t.tsigSeen = t.tsigSeen || hasTSIG(msg)

		done, err := t.inbound.Put(msg)
		if err != nil {
			if _, isUseTCP := err.(*UseTCPError); isUseTCP {
				if !t.usingUDP {
					return nil, err
				}
				if t.udpMode == UDPModeOnly {
					return nil, err
				}
				if err := t.fallbackToTCP(); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}

		log.Record(&log.XfrLog{Server: t.dest, Zone: string(t.manager.Origin()), Kind: t.kind.String(), Messages: t.messagesServed, Done: done})

		if done {
			t.done = true
			if err := t.checkFinalTSIG(); err != nil {
				return msg, err
			}
			return msg, nil
		}
		return msg, nil
	}
}

func (t *Transfer) fallbackToTCP() error {
	if t.udpConn != nil {
		t.udpConn.Close()
		t.udpConn = nil
	}
	t.udpMode = UDPModeNever
	return t.startTCP()
}

func (t *Transfer) checkFinalTSIG() error {
	if t.query == nil || !querySignedWithTSIG(t.query) {
		return nil
	}
	if !t.tsigSeen {
		return formErrorf("missing TSIG")
	}
	return nil
}

func (t *Transfer) perMessageDeadline() time.Time {
	d := time.Now().Add(t.cfg.Timeout)
	if t.cfg.Timeout <= 0 {
		d = time.Time{}
	}
	if t.hasLifetime && (d.IsZero() || t.lifetimeEnd.Before(d)) {
		d = t.lifetimeEnd
	}
	return d
}

func (t *Transfer) readOneMessage(ctx context.Context, deadline time.Time) ([]byte, error) {
	if t.usingUDP {
		if err := t.udpConn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		for {
			raw := make([]byte, buf.Size)
			n, from, err := t.udpConn.ReadFrom(raw)
			if err != nil {
				return nil, err
			}
			udpFrom, ok := from.(*net.UDPAddr)
			if ok && udpFrom.Port == t.udpRemote.Port && udpFrom.IP.Equal(t.udpRemote.IP) {
				return raw[:n], nil
			}
			// packet from an unexpected source; keep waiting for the real reply
		}
	}

	type deadliner interface{ SetReadDeadline(time.Time) error }
	if dl, ok := t.conn.(deadliner); ok {
		if err := dl.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	lengthBuf := buf.New()
	defer lengthBuf.Release()
	if _, err := lengthBuf.ReadFullFrom(t.conn, 2); err != nil {
		return nil, err
	}
	length := int(binary.BigEndian.Uint16(lengthBuf.Bytes()))
	body := buf.New()
	defer body.Release()
	if _, err := body.ReadFullFrom(t.conn, length); err != nil {
		return nil, err
	}
	return append([]byte(nil), body.Bytes()...), nil
}

// Close releases the transfer's socket. Safe to call more than once and
// safe to call whether or not the transfer ran to completion.
func (t *Transfer) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.udpConn != nil {
		return t.udpConn.Close()
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

// Drain runs a transfer to completion without yielding intermediate
// messages to the caller, for callers that only care about the final
// committed state (the non-generator variant the specification allows).
func Drain(ctx context.Context, dest string, manager TransactionManager, inbound Inbound, kind Kind, cfg Config) error {
	t, err := New(dest, manager, inbound, kind, cfg)
	if err != nil {
		return err
	}
	defer t.Close()
	for {
		_, err := t.Next(ctx)
		if err == ErrDone {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func portStr(p uint16) string {
	if p == 0 {
		p = 53
	}
	return strconv.Itoa(int(p))
}

func udpNetwork(ip net.IP) string {
	if ip.To4() != nil {
		return "udp4"
	}
	return "udp6"
}

func hasTSIG(m *wire.Message) bool {
	for _, rr := range m.Additional {
		if rr.Type == wire.TypeTSIG {
			return true
		}
	}
	return false
}

// querySignedWithTSIG reports whether the raw query message carries a TSIG
// record in its additional section, by a cheap arcount-driven reparse.
func querySignedWithTSIG(query []byte) bool {
	m := wire.ParseMessage(query)
	return m.Err == nil && hasTSIG(m)
}

func formErrorf(msg string) error {
	return errors.New(msg).AtWarning()
}
