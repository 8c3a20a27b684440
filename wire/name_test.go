package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNameRoot(t *testing.T) {
	p := NewParser([]byte{0x00})
	n, err := p.GetName()
	require.NoError(t, err)
	assert.Equal(t, Name("."), n)
	assert.True(t, n.IsRoot())
	assert.Equal(t, 1, p.Current())
}

func TestGetNameSimple(t *testing.T) {
	// 3"www" 7"example" 3"com" 0
	wire := []byte{3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}
	p := NewParser(wire)
	n, err := p.GetName()
	require.NoError(t, err)
	assert.Equal(t, Name("www.example.com."), n)
	assert.Equal(t, len(wire), p.Current())
}

func TestGetNameEscapesNonPrintable(t *testing.T) {
	wire := []byte{2, 'a', 0x01, 0}
	p := NewParser(wire)
	n, err := p.GetName()
	require.NoError(t, err)
	assert.Equal(t, Name(`a\001.`), n)
}

func TestGetNameEscapesDot(t *testing.T) {
	wire := []byte{2, 'a', '.', 0}
	p := NewParser(wire)
	n, err := p.GetName()
	require.NoError(t, err)
	assert.Equal(t, Name(`a\..`), n)
}

func TestGetNameBackwardPointer(t *testing.T) {
	// offset 0: uncompressed name "example.com." (13 bytes), offset 13: pointer to 0
	wire := []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0, 0xc0, 0x00}
	p := NewParser(wire)
	p.current = 13
	n, err := p.GetName()
	require.NoError(t, err)
	assert.Equal(t, Name("example.com."), n)
	// cursor advances only past the 2-byte pointer, not into the jump target
	assert.Equal(t, 15, p.Current())
}

func TestGetNameForwardPointerFails(t *testing.T) {
	wire := []byte{0xc0, 0x05, 0, 0, 0, 0}
	p := NewParser(wire)
	_, err := p.GetName()
	require.Error(t, err)
	assert.Equal(t, errForwardPointer, err)
}

func TestGetNameSelfPointerFails(t *testing.T) {
	wire := []byte{0xc0, 0x00}
	p := NewParser(wire)
	_, err := p.GetName()
	require.Error(t, err)
	assert.Equal(t, errForwardPointer, err)
}

func TestGetNameLabelTooLong(t *testing.T) {
	wire := append([]byte{64}, make([]byte, 64)...)
	p := NewParser(wire)
	_, err := p.GetName()
	require.Error(t, err)
	assert.Equal(t, errLabelTooLong, err)
}

func TestGetNameTotalTooLong(t *testing.T) {
	var wire []byte
	// 4 labels of 63 bytes = 256 encoded bytes, over the 255 limit
	for i := 0; i < 4; i++ {
		wire = append(wire, 63)
		wire = append(wire, make([]byte, 63)...)
	}
	wire = append(wire, 0)
	p := NewParser(wire)
	_, err := p.GetName()
	require.Error(t, err)
	assert.Equal(t, errNameTooLong, err)
}

func TestRestrictToFailsWithoutMovingCursor(t *testing.T) {
	p := NewParser(make([]byte, 10))
	p.current = 4
	_, err := p.RestrictTo(100)
	require.Error(t, err)
	assert.Equal(t, 4, p.Current())
}

func TestRestrictToReleaseRestoresEnd(t *testing.T) {
	p := NewParser(make([]byte, 10))
	release, err := p.RestrictTo(3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Remaining())
	release()
	assert.Equal(t, 10, p.Remaining())
}
