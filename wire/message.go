package wire

import (
	"fmt"
	"strings"
)

// Error marks the first byte at which parsing could not proceed, either for
// the whole message (question/RR framing failure) or localized to a single
// RR's rdata.
type Error struct {
	Offset int
	Cause  error
}

func (e *Error) Error() string { return errorCoreText(e.Offset, e.Cause) }

func errorCoreText(offset int, cause error) string {
	return fmt.Sprintf("error:%04x: %s", offset, cause)
}

// Question is a parsed entry of the question section, with the byte range
// it occupied in the wire buffer.
type Question struct {
	Name        Name
	Class, Type uint16
	Start, End  int
}

// Text renders the question the way dig/dnspython would: "name class type".
func (q Question) Text() string {
	return fmt.Sprintf("%s %s %s", q.Name, ClassText(q.Class), TypeText(q.Type))
}

// RR is a parsed resource record. Rdata is nil when RDLength is 0 or when
// rdata decoding failed (in which case Err is set); the byte range always
// covers the declared rdlength regardless.
type RR struct {
	Name        Name
	Class, Type uint16
	TTL         uint32
	Rdata       Rdata
	Start       int
	RdataStart  int
	End         int
	Err         *Error
}

// RDLen returns the declared rdata length from the byte range.
func (r RR) RDLen() int { return r.End - r.RdataStart }

// Text renders the RR the way dig/dnspython would, appending an inline
// error annotation when rdata decoding failed for this record.
func (r RR) Text() string {
	b := fmt.Sprintf("%s %d %s %s", r.Name, r.TTL, ClassText(r.Class), TypeText(r.Type))
	if r.Rdata != nil {
		b += " " + r.Rdata.Text()
	}
	if r.Err != nil {
		b += " ; " + errorCoreText(r.Err.Offset, r.Err.Cause)
	}
	return b
}

// Message is a parsed DNS message that retains its backing wire buffer and
// the byte offsets of every element it found, so malformed input can still
// be inspected and rendered rather than simply rejected.
type Message struct {
	Wire    []byte
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16

	Question   []Question
	Answer     []RR
	Authority  []RR
	Additional []RR

	// Err is set once parsing cannot continue: either the 12-byte header
	// was short, or framing (name/type/class/ttl/rdlength) for a question
	// or RR failed. Sections after the point of failure are empty.
	Err *Error

	// TrailingOffset is set iff parsing completed with no Err and bytes
	// remain after the last record.
	TrailingOffset *int
}

// ParseMessage parses wireBytes into a Message. It never panics: malformed
// input produces a Message with Err set rather than an error return, so
// that ToText can still render exactly how far parsing got.
func ParseMessage(wireBytes []byte) *Message {
	p := NewParser(wireBytes)
	m := &Message{Wire: wireBytes}

	hdr, err := p.GetHeader()
	if err != nil {
		m.Err = &Error{Offset: p.Current(), Cause: err}
		return m
	}
	m.ID, m.Flags = hdr.ID, hdr.Flags
	m.QDCount, m.ANCount, m.NSCount, m.ARCount = hdr.QDCount, hdr.ANCount, hdr.NSCount, hdr.ARCount

	m.Question = parseQuestions(p, int(hdr.QDCount), m)
	m.Answer = parseRRs(p, int(hdr.ANCount), m)
	m.Authority = parseRRs(p, int(hdr.NSCount), m)
	m.Additional = parseRRs(p, int(hdr.ARCount), m)

	if m.Err == nil && p.Remaining() > 0 {
		off := p.Current()
		m.TrailingOffset = &off
	}
	return m
}

func parseQuestions(p *Parser, count int, m *Message) []Question {
	if m.Err != nil {
		return nil
	}
	var qs []Question
	for i := 0; i < count; i++ {
		start := p.Current()
		name, err := p.GetName()
		var tail QuestionTail
		if err == nil {
			tail, err = p.GetQuestionTail()
		}
		if err != nil {
			_ = p.Seek(start)
			m.Err = &Error{Offset: p.Current(), Cause: err}
			return qs
		}
		qs = append(qs, Question{Name: name, Class: tail.Class, Type: tail.Type, Start: start, End: p.Current()})
	}
	return qs
}

func parseRRs(p *Parser, count int, m *Message) []RR {
	if m.Err != nil {
		return nil
	}
	var rrs []RR
	for i := 0; i < count; i++ {
		start := p.Current()
		name, err := p.GetName()
		var hdr RRHeader
		if err == nil {
			hdr, err = p.GetRRHeader()
		}
		if err != nil {
			_ = p.Seek(start)
			m.Err = &Error{Offset: p.Current(), Cause: err}
			return rrs
		}

		rdataStart := p.Current()
		var rdata Rdata
		var rrErr *Error
		if hdr.RDLength > 0 {
			release, rerr := p.RestrictTo(int(hdr.RDLength))
			if rerr != nil {
				// A rdlength that cannot fit is a framing failure, not a
				// localized rdata failure: it never got as far as the
				// per-record try in the reference parser, so it aborts
				// the whole message the same way a bad name would.
				_ = p.Seek(start)
				m.Err = &Error{Offset: p.Current(), Cause: rerr}
				return rrs
			}
			decoded, derr := decodeRdata(hdr.Type, p)
			if derr != nil {
				rrErr = &Error{Offset: p.Current(), Cause: derr}
				_ = p.Seek(rdataStart + int(hdr.RDLength))
			} else {
				rdata = decoded
			}
			release()
		}

		rrs = append(rrs, RR{
			Name: name, Class: hdr.Class, Type: hdr.Type, TTL: hdr.TTL,
			Rdata: rdata, Start: start, RdataStart: rdataStart, End: p.Current(), Err: rrErr,
		})
	}
	return rrs
}

// Opcode extracts bits 11-14 of Flags.
func (m *Message) Opcode() uint8 { return uint8((m.Flags >> 11) & 0x0F) }

// EDNSFlags returns the OPT pseudo-RR's TTL field (extended rcode bits plus
// EDNS flags) if a root-owned OPT record is present in Additional, else 0.
func (m *Message) EDNSFlags() uint32 {
	for _, rr := range m.Additional {
		if rr.Type == TypeOPT && rr.Name.IsRoot() {
			return rr.TTL
		}
	}
	return 0
}

// Rcode returns the effective rcode: the base 4 bits from Flags, extended
// by the top byte of EDNSFlags() if an OPT record is present.
func (m *Message) Rcode() uint16 {
	base := uint16(m.Flags & 0x000F)
	extended := uint16((m.EDNSFlags() >> 24) & 0xFF)
	return (extended << 4) | base
}

// ToText renders the message as an annotated hex dump: 16 bytes per line,
// each logical element commented on the line where it begins. This is the
// literal testable ground truth for the parser.
func (m *Message) ToText() string {
	var sb strings.Builder
	sb.WriteString("; HEADER\n")
	annotateSlice(&sb, m.Wire, 0, 2, fmt.Sprintf("id = %d", m.ID))
	flagsLine := fmt.Sprintf("%s %s %s", OpcodeText(m.Opcode()), FlagsText(m.Flags), RcodeText(m.Rcode()))
	annotateSlice(&sb, m.Wire, 2, 4, fmt.Sprintf("flags = %s", flagsLine))
	annotateSlice(&sb, m.Wire, 4, 6, fmt.Sprintf("qcount = %d", m.QDCount))
	annotateSlice(&sb, m.Wire, 6, 8, fmt.Sprintf("ancount = %d", m.ANCount))
	annotateSlice(&sb, m.Wire, 8, 10, fmt.Sprintf("aucount = %d", m.NSCount))
	annotateSlice(&sb, m.Wire, 10, 12, fmt.Sprintf("adcount = %d", m.ARCount))

	sb.WriteString("; QUESTION\n")
	for _, q := range m.Question {
		annotateSlice(&sb, m.Wire, q.Start, q.End, q.Text())
	}
	sb.WriteString("; ANSWER\n")
	for _, r := range m.Answer {
		annotateSlice(&sb, m.Wire, r.Start, r.End, r.Text())
	}
	sb.WriteString("; AUTHORITY\n")
	for _, r := range m.Authority {
		annotateSlice(&sb, m.Wire, r.Start, r.End, r.Text())
	}
	sb.WriteString("; ADDITIONAL\n")
	for _, r := range m.Additional {
		annotateSlice(&sb, m.Wire, r.Start, r.End, r.Text())
	}

	if m.Err != nil {
		sb.WriteString("; ERROR\n")
		annotateSlice(&sb, m.Wire, m.Err.Offset, len(m.Wire), errorCoreText(m.Err.Offset, m.Err.Cause))
	} else if m.TrailingOffset != nil {
		sb.WriteString("; TRAILING\n")
		annotateSlice(&sb, m.Wire, *m.TrailingOffset, len(m.Wire), "")
	}
	fmt.Fprintf(&sb, "; total length = %d", len(m.Wire))
	return sb.String()
}
