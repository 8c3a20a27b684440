package wire

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

var classNames = map[uint16]string{
	1:   "IN",
	3:   "CH",
	4:   "HS",
	254: "NONE",
	255: "ANY",
}

// ClassText renders a DNS class per dnspython's to_text convention: known
// mnemonic if registered, else "CLASSn" (RFC 3597 generic presentation).
func ClassText(class uint16) string {
	if s, ok := classNames[class]; ok {
		return s
	}
	return "CLASS" + strconv.Itoa(int(class))
}

var typeNames = map[uint16]string{
	1:   "A",
	2:   "NS",
	5:   "CNAME",
	6:   "SOA",
	12:  "PTR",
	13:  "HINFO",
	15:  "MX",
	16:  "TXT",
	28:  "AAAA",
	33:  "SRV",
	35:  "NAPTR",
	39:  "DNAME",
	41:  "OPT",
	43:  "DS",
	46:  "RRSIG",
	47:  "NSEC",
	48:  "DNSKEY",
	50:  "NSEC3",
	51:  "NSEC3PARAM",
	52:  "TLSA",
	64:  "SVCB",
	65:  "HTTPS",
	249: "TKEY",
	250: "TSIG",
	251: "IXFR",
	252: "AXFR",
	255: "ANY",
	257: "CAA",
}

// TypeA through TypeAXFR name the record types the rest of the module refers
// to. Of these, only NS, CNAME, PTR and SOA get type-specific rdata decoding
// (see decodeRdata); the others decode as generic rdata.
const (
	TypeA     = 1
	TypeNS    = 2
	TypeCNAME = 5
	TypeSOA   = 6
	TypePTR   = 12
	TypeAAAA  = 28
	TypeOPT   = 41
	TypeTSIG  = 250
	TypeIXFR  = 251
	TypeAXFR  = 252
)

// TypeText renders a DNS type per dnspython's to_text convention.
func TypeText(t uint16) string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "TYPE" + strconv.Itoa(int(t))
}

var opcodeNames = map[uint8]string{
	0: "QUERY",
	1: "IQUERY",
	2: "STATUS",
	4: "NOTIFY",
	5: "UPDATE",
}

// OpcodeText renders the 4-bit opcode extracted from a header's flags.
func OpcodeText(opcode uint8) string {
	if s, ok := opcodeNames[opcode]; ok {
		return s
	}
	return "OPCODE" + strconv.Itoa(int(opcode))
}

var rcodeNames = map[uint16]string{
	0:  "NOERROR",
	1:  "FORMERR",
	2:  "SERVFAIL",
	3:  "NXDOMAIN",
	4:  "NOTIMP",
	5:  "REFUSED",
	6:  "YXDOMAIN",
	7:  "YXRRSET",
	8:  "NXRRSET",
	9:  "NOTAUTH",
	10: "NOTZONE",
	16: "BADVERS",
}

// RcodeText renders the effective (base + EDNS-extended) rcode.
func RcodeText(rcode uint16) string {
	if s, ok := rcodeNames[rcode]; ok {
		return s
	}
	return "RCODE" + strconv.Itoa(int(rcode))
}

// flagBit names the header flag bits in the fixed order dnspython prints
// them, skipping opcode/rcode/reserved bits.
var flagBits = []struct {
	mask uint16
	name string
}{
	{0x8000, "QR"},
	{0x0400, "AA"},
	{0x0200, "TC"},
	{0x0100, "RD"},
	{0x0080, "RA"},
	{0x0020, "AD"},
	{0x0010, "CD"},
}

// FlagsText renders the set single-bit flags, space separated, in header
// order.
func FlagsText(flags uint16) string {
	var set []string
	for _, fb := range flagBits {
		if flags&fb.mask != 0 {
			set = append(set, fb.name)
		}
	}
	return strings.Join(set, " ")
}

const annotateWidth = 16

// annotateSlice renders wire[start:end] as a hex dump, 16 bytes per output
// line, each line addressed by its starting offset. The first line of a
// slice is left-padded with two spaces per byte that precedes start on that
// line, and carries the annotation, right-padded with two spaces per byte so
// it lines up past the full 16-byte column regardless of where in the line
// the slice begins.
func annotateSlice(sb *strings.Builder, wireBytes []byte, start, end int, annotation string) {
	padBefore := start % annotateWidth
	where := start
	for where < end {
		fmt.Fprintf(sb, "%04x: ", where)
		sb.WriteString(strings.Repeat("  ", padBefore))
		amount := end - where
		if max := annotateWidth - padBefore; amount > max {
			amount = max
		}
		padAfter := annotateWidth - amount - padBefore
		sb.WriteString(hex.EncodeToString(wireBytes[where : where+amount]))
		if where == start && len(annotation) > 0 {
			if padAfter > 0 {
				sb.WriteString(strings.Repeat("  ", padAfter))
			}
			sb.WriteString(" ; ")
			sb.WriteString(annotation)
		}
		sb.WriteByte('\n')
		padBefore = 0
		where += amount
	}
}
