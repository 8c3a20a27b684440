package wire

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wire1 is a 179-byte real-world NS response for dnspython.org., the
// literal ground truth this parser is built against: four NS records and a
// trailing OPT pseudo-record.
func wire1(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString(
		"04d28180000100040000000109646e73707974686f6e036f72670000020001" +
			"c00c0002000100000e100014076e732d3132353309617773646e732d3238c0" +
			"16c00c0002000100000e100019076e732d3230323009617773646e732d3630" +
			"02636f02756b00c00c0002000100000e100016066e732d3531380961777364" +
			"6e732d3030036e657400c00c0002000100000e100016066e732d3334330961" +
			"7773646e732d343203636f6d000000292000000000000000")
	require.NoError(t, err)
	require.Len(t, b, 179)
	return b
}

const text1 = `; HEADER
0000: 04d2                             ; id = 1234
0002:     8180                         ; flags = QUERY QR RD RA NOERROR
0004:         0001                     ; qcount = 1
0006:             0004                 ; ancount = 4
0008:                 0000             ; aucount = 0
000a:                     0001         ; adcount = 1
; QUESTION
000c:                         09646e73 ; dnspython.org. IN NS
0010: 707974686f6e036f72670000020001
; ANSWER
001f:                               c0 ; dnspython.org. 3600 IN NS ns-1253.awsdns-28.org.
0020: 0c0002000100000e100014076e732d31
0030: 32353309617773646e732d3238c016
003f:                               c0 ; dnspython.org. 3600 IN NS ns-2020.awsdns-60.co.uk.
0040: 0c0002000100000e100019076e732d32
0050: 30323009617773646e732d363002636f
0060: 02756b00
0064:         c00c0002000100000e100016 ; dnspython.org. 3600 IN NS ns-518.awsdns-00.net.
0070: 066e732d35313809617773646e732d30
0080: 30036e657400
0086:             c00c0002000100000e10 ; dnspython.org. 3600 IN NS ns-343.awsdns-42.com.
0090: 0016066e732d33343309617773646e73
00a0: 2d343203636f6d00
; AUTHORITY
; ADDITIONAL
00a8:                 0000292000000000 ; . 0 CLASS8192 OPT
00b0: 000000
; total length = 179`

const text2 = `; HEADER
0000: 04d2                             ; id = 1234
0002:     8180                         ; flags = QUERY QR RD RA NOERROR
0004:         0001                     ; qcount = 1
0006:             0004                 ; ancount = 4
0008:                 0000             ; aucount = 0
000a:                     0001         ; adcount = 1
; QUESTION
000c:                         09646e73 ; dnspython.org. IN NS
0010: 707974686f6e036f72670000020001
; ANSWER
; AUTHORITY
; ADDITIONAL
; ERROR
001f:                               ff ; error:001f: A DNS compression pointer points forward instead of backward.
0020: ffffffffffffffffffffffffffffffff
0030: ffffffffffffffffffffffffffffffff
0040: ffffffffffffffffffffffffffffffff
0050: ffffffffffffffffffffffffffffffff
0060: ffffffffffffffffffffffffffffffff
0070: ffffffffffffffffffffffffffffffff
0080: ffffffffffffffffffffffffffffffff
0090: ffffffffffffffffffffffffffffffff
00a0: ffffffffffffffffffffffffffffffff
00b0: ffffffffff
; total length = 181`

const text3 = `; HEADER
0000: 04d2                             ; id = 1234
0002:     8180                         ; flags = QUERY QR RD RA NOERROR
0004:         0001                     ; qcount = 1
0006:             0004                 ; ancount = 4
0008:                 0000             ; aucount = 0
000a:                     0001         ; adcount = 1
; QUESTION
000c:                         09646e73 ; dnspython.org. IN NS
0010: 707974686f6e036f72670000020001
; ANSWER
001f:                               c0 ; dnspython.org. 3600 IN NS ns-1253.awsdns-28.org.
0020: 0c0002000100000e100014076e732d31
0030: 32353309617773646e732d3238c016
003f:                               c0 ; dnspython.org. 3600 IN NS ns-2020.awsdns-60.co.uk.
0040: 0c0002000100000e100019076e732d32
0050: 30323009617773646e732d363002636f
0060: 02756b00
0064:         c00c0002000100000e100016 ; dnspython.org. 3600 IN NS ns-518.awsdns-00.net.
0070: 066e732d35313809617773646e732d30
0080: 30036e657400
0086:             c00c0002000100000e10 ; dnspython.org. 3600 IN NS ns-343.awsdns-42.com.
0090: 0016066e732d33343309617773646e73
00a0: 2d343203636f6d00
; AUTHORITY
; ADDITIONAL
00a8:                 0000292000000000 ; . 0 CLASS8192 OPT
00b0: 000000
; TRAILING
00b3:       736f6d6520747261696c696e67
00c0: 206a756e6b
; total length = 197`

const text4 = `; HEADER
0000: 04d2                             ; id = 1234
0002:     8180                         ; flags = QUERY QR RD RA NOERROR
0004:         0001                     ; qcount = 1
0006:             0004                 ; ancount = 4
0008:                 0000             ; aucount = 0
000a:                     0001         ; adcount = 1
; QUESTION
000c:                         09646e73 ; dnspython.org. IN NS
0010: 707974686f6e036f72670000020001
; ANSWER
; AUTHORITY
; ADDITIONAL
; ERROR
001f:                               c0 ; error:001f: DNS message is malformed.
0020: 0c0002000100000e10ffff076e732d31
0030: 32353309617773646e732d3238c016c0
0040: 0c0002000100000e100019076e732d32
0050: 30323009617773646e732d363002636f
0060: 02756b00c00c0002000100000e100016
0070: 066e732d35313809617773646e732d30
0080: 30036e657400c00c0002000100000e10
0090: 0016066e732d33343309617773646e73
00a0: 2d343203636f6d000000292000000000
00b0: 000000
; total length = 179`

const text5 = `; HEADER
0000: 04d2                             ; id = 1234
0002:     8180                         ; flags = QUERY QR RD RA NOERROR
0004:         0001                     ; qcount = 1
0006:             0004                 ; ancount = 4
0008:                 0000             ; aucount = 0
000a:                     0001         ; adcount = 1
; QUESTION
000c:                         09646e73 ; dnspython.org. IN NS
0010: 707974686f6e036f72670000020001
; ANSWER
001f:                               c0 ; dnspython.org. 3600 IN NS ; error:002d: A DNS compression pointer points forward instead of backward.
0020: 0c0002000100000e100014ffff732d31
0030: 32353309617773646e732d3238c016
003f:                               c0 ; dnspython.org. 3600 IN NS ns-2020.awsdns-60.co.uk.
0040: 0c0002000100000e100019076e732d32
0050: 30323009617773646e732d363002636f
0060: 02756b00
0064:         c00c0002000100000e100016 ; dnspython.org. 3600 IN NS ns-518.awsdns-00.net.
0070: 066e732d35313809617773646e732d30
0080: 30036e657400
0086:             c00c0002000100000e10 ; dnspython.org. 3600 IN NS ns-343.awsdns-42.com.
0090: 0016066e732d33343309617773646e73
00a0: 2d343203636f6d00
; AUTHORITY
; ADDITIONAL
00a8:                 0000292000000000 ; . 0 CLASS8192 OPT
00b0: 000000
; total length = 179`

func TestToTextBasic(t *testing.T) {
	w := wire1(t)
	m := ParseMessage(w)
	assert.Nil(t, m.Err)
	assert.Nil(t, m.TrailingOffset)
	assert.Len(t, m.Answer, 4)
	assert.Equal(t, text1, m.ToText())
}

func TestToTextBadOwnerName(t *testing.T) {
	w := wire1(t)
	w2 := append(append([]byte{}, w[:31]...), make([]byte, 150)...)
	for i := 31; i < len(w2); i++ {
		w2[i] = 0xff
	}
	m := ParseMessage(w2)
	require.NotNil(t, m.Err)
	assert.Equal(t, 0x1f, m.Err.Offset)
	assert.Empty(t, m.Answer)
	assert.Empty(t, m.Authority)
	assert.Empty(t, m.Additional)
	assert.Equal(t, text2, m.ToText())
}

func TestToTextTrailingJunk(t *testing.T) {
	w := wire1(t)
	w3 := append(append([]byte{}, w...), []byte("some trailing junk")...)
	m := ParseMessage(w3)
	assert.Nil(t, m.Err)
	require.NotNil(t, m.TrailingOffset)
	assert.Equal(t, 0xb3, *m.TrailingOffset)
	assert.Len(t, m.Answer, 4)
	assert.Equal(t, text3, m.ToText())
}

func TestToTextBadRdlen(t *testing.T) {
	w := wire1(t)
	w4 := append([]byte{}, w[:41]...)
	w4 = append(w4, 0xff, 0xff)
	w4 = append(w4, w[43:]...)
	m := ParseMessage(w4)
	require.NotNil(t, m.Err)
	assert.Equal(t, 0x1f, m.Err.Offset)
	assert.Empty(t, m.Answer)
	assert.Equal(t, text4, m.ToText())
}

func TestToTextBadNameInRdata(t *testing.T) {
	w := wire1(t)
	w5 := append([]byte{}, w[:43]...)
	w5 = append(w5, 0xff, 0xff)
	w5 = append(w5, w[45:]...)
	m := ParseMessage(w5)
	assert.Nil(t, m.Err)
	require.Len(t, m.Answer, 4)
	require.NotNil(t, m.Answer[0].Err)
	assert.Equal(t, 0x2d, m.Answer[0].Err.Offset)
	assert.Nil(t, m.Answer[0].Rdata)
	for _, rr := range m.Answer[1:] {
		assert.Nil(t, rr.Err)
		assert.NotNil(t, rr.Rdata)
	}
	assert.Equal(t, text5, m.ToText())
}
