package wire

import (
	"encoding/hex"
	"fmt"
)

// Rdata is the decoded, type-specific payload of an RR. The wire codec only
// decodes the handful of types the transport and zone-transfer layers
// themselves need to inspect (names for CNAME-chasing, SOA serials for
// IXFR); every other type is kept as an opaque RFC 3597 generic rdata,
// which is a faithful and round-trippable representation without needing
// the full per-type rdata library the specification excludes.
type Rdata interface {
	// Text renders the rdata the way dig/dnspython would print it.
	Text() string
}

// NameRdata is the rdata of CNAME/NS/PTR/DNAME-shaped records: a single
// domain name, possibly itself compressed.
type NameRdata struct {
	Name Name
}

func (r NameRdata) Text() string { return string(r.Name) }

// SOARdata is the rdata of a start-of-authority record. Serial is what the
// zone transfer engine reads to decide IXFR base/end markers.
type SOARdata struct {
	MName, RName                              Name
	Serial, Refresh, Retry, Expire, Minimum uint32
}

func (r SOARdata) Text() string {
	return fmt.Sprintf("%s %s %d %d %d %d %d", r.MName, r.RName, r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum)
}

// GenericRdata is the RFC 3597 "unknown type" presentation for any rdata
// this package does not specially decode: the raw bytes, untouched.
type GenericRdata struct {
	Raw []byte
}

func (r GenericRdata) Text() string {
	if len(r.Raw) == 0 {
		return `\# 0`
	}
	return fmt.Sprintf(`\# %d %s`, len(r.Raw), hex.EncodeToString(r.Raw))
}

// decodeRdata decodes the rdata for one RR. The caller must already have
// restricted p's active end to exactly rdlength bytes via RestrictTo; on a
// clean return the cursor sits at the end of that restriction.
func decodeRdata(rdtype uint16, p *Parser) (Rdata, error) {
	switch rdtype {
	case TypeNS, TypeCNAME, TypePTR, 39: // 39 = DNAME
		name, err := p.GetName()
		if err != nil {
			return nil, err
		}
		return NameRdata{Name: name}, nil
	case TypeSOA:
		mname, err := p.GetName()
		if err != nil {
			return nil, err
		}
		rname, err := p.GetName()
		if err != nil {
			return nil, err
		}
		b, err := p.GetBytes(20)
		if err != nil {
			return nil, err
		}
		return SOARdata{
			MName:   mname,
			RName:   rname,
			Serial:  be32(b[0:4]),
			Refresh: be32(b[4:8]),
			Retry:   be32(b[8:12]),
			Expire:  be32(b[12:16]),
			Minimum: be32(b[16:20]),
		}, nil
	default:
		raw, err := p.GetBytes(p.Remaining())
		if err != nil {
			return nil, err
		}
		return GenericRdata{Raw: append([]byte(nil), raw...)}, nil
	}
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
