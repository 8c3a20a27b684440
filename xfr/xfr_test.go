package xfr

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtls/dnsquery/wire"
)

type fakeManager struct {
	origin wire.Name
	class  uint16
}

func (m fakeManager) Origin() wire.Name { return m.origin }
func (m fakeManager) Class() uint16     { return m.class }

func TestNewRejectsEmptyQuery(t *testing.T) {
	_, err := New("127.0.0.1", fakeManager{origin: "example.com.", class: 1}, nil, KindAXFR, Config{})
	require.Error(t, err)
	_, ok := err.(*ValueError)
	assert.True(t, ok)
}

func TestNewRejectsAXFROverUDPOnly(t *testing.T) {
	_, err := New("127.0.0.1", fakeManager{origin: "example.com.", class: 1}, nil, KindAXFR, Config{
		Query:   []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		UDPMode: UDPModeOnly,
	})
	require.Error(t, err)
	_, ok := err.(*ValueError)
	assert.True(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "axfr", KindAXFR.String())
	assert.Equal(t, "ixfr", KindIXFR.String())
}

func TestPerMessageDeadlinePrefersTighterLifetime(t *testing.T) {
	tr := &Transfer{cfg: Config{Timeout: time.Hour}}
	tr.lifetimeEnd = time.Now().Add(time.Millisecond)
	tr.hasLifetime = true

	d := tr.perMessageDeadline()
	assert.True(t, d.Before(time.Now().Add(time.Second)))
}

func TestPerMessageDeadlineUnboundedWithoutTimeoutOrLifetime(t *testing.T) {
	tr := &Transfer{cfg: Config{}}
	d := tr.perMessageDeadline()
	assert.True(t, d.IsZero())
}

func TestCloseIsIdempotent(t *testing.T) {
	tr := &Transfer{}
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}

// doneOnFirstMessage completes a transfer as soon as it sees any message,
// letting TestTransferOverLoopbackUDP exercise the real UDP start/read/Put
// path over loopback without a live network.
type doneOnFirstMessage struct{}

func (d *doneOnFirstMessage) Put(msg *wire.Message) (bool, error) { return true, nil }

func TestTransferOverLoopbackUDP(t *testing.T) {
	server, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer server.Close()

	reply := buildMinimalIXFRReply(t)

	go func() {
		raw := make([]byte, 512)
		_, from, err := server.ReadFromUDP(raw)
		if err != nil {
			return
		}
		server.WriteToUDP(reply, from)
	}()

	query := buildMinimalQuery(t)
	cfg := Config{
		Port:    uint16(server.LocalAddr().(*net.UDPAddr).Port),
		Query:   query,
		Timeout: 2 * time.Second,
		UDPMode: UDPModeTryFirst,
	}

	tr, err := New("127.0.0.1", fakeManager{origin: "example.com.", class: 1}, &doneOnFirstMessage{}, KindIXFR, cfg)
	require.NoError(t, err)
	defer tr.Close()

	msg, err := tr.Next(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, msg)

	_, err = tr.Next(context.Background())
	assert.Equal(t, ErrDone, err)
}

func buildMinimalQuery(t *testing.T) []byte {
	t.Helper()
	b := make([]byte, 0, 32)
	b = append(b, 0, 1) // id
	b = append(b, 0, 0) // flags
	b = append(b, 0, 1, 0, 0, 0, 0, 0, 0)
	b = append(b, 7)
	b = append(b, "example"...)
	b = append(b, 3)
	b = append(b, "com"...)
	b = append(b, 0, 0, 251, 0, 1) // IXFR, IN
	return b
}

func buildMinimalIXFRReply(t *testing.T) []byte {
	t.Helper()
	b := make([]byte, 0, 32)
	idBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(idBuf, 1)
	b = append(b, idBuf...)
	b = append(b, 0x80, 0) // QR=1
	b = append(b, 0, 1, 0, 0, 0, 0, 0, 0)
	b = append(b, 7)
	b = append(b, "example"...)
	b = append(b, 3)
	b = append(b, "com"...)
	b = append(b, 0, 0, 251, 0, 1)
	return b
}
