package log

import (
	"strconv"
	"strings"
	"time"
)

// TransportStatus labels the outcome of a single transport attempt.
type TransportStatus string

const (
	StatusSent     = TransportStatus("sent query:")
	StatusReceived = TransportStatus("got answer:")
	StatusFallback = TransportStatus("falling back to tcp:")
	StatusTimeout  = TransportStatus("timed out:")
	StatusBadReply = TransportStatus("bad response:")
)

// QueryLog records a single query/response cycle over any transport.
type QueryLog struct {
	Transport string
	Server    string
	Name      string
	Status    TransportStatus
	Elapsed   time.Duration
	Error     error
}

func (l *QueryLog) String() string {
	b := &strings.Builder{}
	b.WriteString(l.Transport)
	b.WriteString(" ")
	b.WriteString(l.Server)
	b.WriteString(" ")
	b.WriteString(string(l.Status))
	b.WriteString(" ")
	b.WriteString(l.Name)
	if l.Elapsed > 0 {
		b.WriteString(" ")
		b.WriteString(l.Elapsed.String())
	}
	if l.Error != nil {
		b.WriteString(" <")
		b.WriteString(l.Error.Error())
		b.WriteString(">")
	}
	return b.String()
}

// XfrLog records progress of an AXFR/IXFR transfer.
type XfrLog struct {
	Server   string
	Zone     string
	Kind     string // "axfr" or "ixfr"
	Messages int
	Done     bool
	Error    error
}

func (l *XfrLog) String() string {
	b := &strings.Builder{}
	b.WriteString(l.Kind)
	b.WriteString(" ")
	b.WriteString(l.Zone)
	b.WriteString(" @ ")
	b.WriteString(l.Server)
	if l.Done {
		b.WriteString(" done")
	}
	b.WriteString(" msgs=")
	b.WriteString(strconv.Itoa(l.Messages))
	if l.Error != nil {
		b.WriteString(" <")
		b.WriteString(l.Error.Error())
		b.WriteString(">")
	}
	return b.String()
}
