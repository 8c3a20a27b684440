package wire

import "encoding/binary"

// Parser is a byte-cursor over an immutable buffer. It tracks the current
// read offset and an active end (reduced by RestrictTo for bounded
// sub-regions such as rdata). Nested restrictions unwind through the release
// functions RestrictTo returns, each of which restores the end it replaced.
type Parser struct {
	wire    []byte
	current int
	end     int
}

// NewParser creates a cursor over wire, starting at offset 0 with the active
// end set to the whole buffer.
func NewParser(wire []byte) *Parser {
	return &Parser{wire: wire, end: len(wire)}
}

// Current returns the cursor's current offset.
func (p *Parser) Current() int { return p.current }

// Remaining returns the number of bytes left before the active end.
func (p *Parser) Remaining() int { return p.end - p.current }

// Len returns the length of the underlying buffer, ignoring restriction.
func (p *Parser) Len() int { return len(p.wire) }

// Seek repositions the cursor. It does not touch the active end, so it
// cannot be used to escape a restriction.
func (p *Parser) Seek(offset int) error {
	if offset < 0 || offset > len(p.wire) {
		return errMalformed
	}
	p.current = offset
	return nil
}

// GetBytes reads exactly n bytes, failing FormError if fewer than n remain
// before the active end.
func (p *Parser) GetBytes(n int) ([]byte, error) {
	if n < 0 || p.current+n > p.end {
		return nil, errMalformed
	}
	b := p.wire[p.current : p.current+n]
	p.current += n
	return b, nil
}

// GetUint16 reads a big-endian 16-bit unsigned integer.
func (p *Parser) GetUint16() (uint16, error) {
	b, err := p.GetBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// GetUint32 reads a big-endian 32-bit unsigned integer.
func (p *Parser) GetUint32() (uint32, error) {
	b, err := p.GetBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Header holds the fixed 12-byte DNS message header fields.
type Header struct {
	ID, Flags, QDCount, ANCount, NSCount, ARCount uint16
}

// GetHeader reads the 12-byte header as a single atomic operation: either
// all six fields are consumed, or none are (the cursor does not move) and a
// FormError is returned.
func (p *Parser) GetHeader() (Header, error) {
	b, err := p.GetBytes(12)
	if err != nil {
		return Header{}, err
	}
	be := binary.BigEndian
	return Header{
		ID:      be.Uint16(b[0:2]),
		Flags:   be.Uint16(b[2:4]),
		QDCount: be.Uint16(b[4:6]),
		ANCount: be.Uint16(b[6:8]),
		NSCount: be.Uint16(b[8:10]),
		ARCount: be.Uint16(b[10:12]),
	}, nil
}

// RRHeader holds the fixed fields that follow an RR's owner name: type,
// class, ttl and rdlength.
type RRHeader struct {
	Type, Class uint16
	TTL         uint32
	RDLength    uint16
}

// GetRRHeader reads the 10-byte type/class/ttl/rdlength tuple atomically.
func (p *Parser) GetRRHeader() (RRHeader, error) {
	b, err := p.GetBytes(10)
	if err != nil {
		return RRHeader{}, err
	}
	be := binary.BigEndian
	return RRHeader{
		Type:     be.Uint16(b[0:2]),
		Class:    be.Uint16(b[2:4]),
		TTL:      be.Uint32(b[4:8]),
		RDLength: be.Uint16(b[8:10]),
	}, nil
}

// QuestionTail holds the type/class pair that follows a question's name.
type QuestionTail struct {
	Type, Class uint16
}

// GetQuestionTail reads the 4-byte type/class tuple atomically.
func (p *Parser) GetQuestionTail() (QuestionTail, error) {
	b, err := p.GetBytes(4)
	if err != nil {
		return QuestionTail{}, err
	}
	be := binary.BigEndian
	return QuestionTail{Type: be.Uint16(b[0:2]), Class: be.Uint16(b[2:4])}, nil
}

// RestrictTo scopes the active end down to current+n, for parsing a bounded
// sub-region (rdata). It fails immediately — without moving the cursor — if
// that region would reach past the current active end, mirroring a Python
// context manager whose __enter__ can raise before the body ever runs. The
// returned release function restores the previous active end and must be
// called exactly once, even on the error path from the caller's own parsing.
func (p *Parser) RestrictTo(n int) (release func(), err error) {
	if n < 0 {
		return func() {}, errMalformed
	}
	newEnd := p.current + n
	if newEnd < p.current || newEnd > p.end {
		return func() {}, errMalformed
	}
	oldEnd := p.end
	p.end = newEnd
	return func() { p.end = oldEnd }, nil
}
