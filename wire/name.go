package wire

import "strings"

// maxPointers bounds the number of compression-pointer hops followed while
// decoding a single name, guarding against pointer chains crafted to waste
// CPU (a loop is already impossible since every jump must strictly decrease
// the offset, but a long strictly-decreasing chain is still bounded work).
const maxPointers = 128

// maxNameLength is the RFC 1035 limit on a name's total encoded length
// (labels plus length octets, excluding any compression pointer).
const maxNameLength = 255

// maxLabelLength is the RFC 1035 limit on a single label's length.
const maxLabelLength = 63

// Name is a fully-qualified domain name in presentation form, always
// carrying a trailing dot (the root name renders as ".").
type Name string

// IsRoot reports whether n is the DNS root name.
func (n Name) IsRoot() bool { return n == "." }

func (n Name) String() string { return string(n) }

// GetName decodes a possibly-compressed name starting at the cursor's
// current offset. Per RFC 1035 §4.1.4, when a compression pointer is
// encountered the cursor's own position advances only past the two bytes of
// the pointer itself — the labels it refers to are read from elsewhere in
// the buffer without moving the caller-visible offset further. Pointers
// must reference a strictly earlier offset than the pointer's own position;
// a forward or self pointer fails errForwardPointer, at the offset
// immediately following the two pointer bytes (matching where the cursor
// would sit had the pointer been valid).
func (p *Parser) GetName() (Name, error) {
	var labels []string
	totalLen := 0
	pos := p.current
	jumped := false
	hops := 0

	for {
		limit := p.end
		if jumped {
			limit = len(p.wire)
		}
		if pos >= limit {
			return "", errMalformed
		}
		lead := p.wire[pos]
		switch {
		case lead&0xC0 == 0xC0:
			if pos+2 > limit {
				return "", errMalformed
			}
			ptr := int(lead&0x3F)<<8 | int(p.wire[pos+1])
			newCursor := pos + 2
			if !jumped {
				p.current = newCursor
			}
			if ptr >= pos {
				return "", errForwardPointer
			}
			hops++
			if hops > maxPointers {
				return "", errMalformed
			}
			jumped = true
			pos = ptr
		case lead&0xC0 != 0:
			// Reserved label-length bit pattern (0x40 or 0x80).
			return "", errMalformed
		case lead == 0:
			if !jumped {
				p.current = pos + 1
			}
			if len(labels) == 0 {
				return ".", nil
			}
			return Name(strings.Join(labels, ".") + "."), nil
		default:
			length := int(lead)
			if length > maxLabelLength {
				return "", errLabelTooLong
			}
			if pos+1+length > limit {
				return "", errMalformed
			}
			label := p.wire[pos+1 : pos+1+length]
			labels = append(labels, escapeLabel(label))
			totalLen += length + 1
			if totalLen > maxNameLength {
				return "", errNameTooLong
			}
			pos += 1 + length
			if !jumped {
				p.current = pos
			}
		}
	}
}

// escapeLabel renders a raw label as DNS presentation text, backslash
// escaping the bytes that are significant to the dotted-name grammar.
func escapeLabel(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch {
		case c == '.' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x21 || c > 0x7E:
			sb.WriteByte('\\')
			writeDecimal3(&sb, c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func writeDecimal3(sb *strings.Builder, c byte) {
	sb.WriteByte('0' + c/100)
	sb.WriteByte('0' + (c/10)%10)
	sb.WriteByte('0' + c%10)
}
