package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtls/dnsquery/wire"
)

func buildQuestionMessage(t *testing.T, id uint16, opcode uint8, name string, qtype, qclass uint16) []byte {
	t.Helper()
	b := make([]byte, 0, 32)
	b = append(b, byte(id>>8), byte(id))
	flags := uint16(opcode&0x0F) << 11
	b = append(b, byte(flags>>8), byte(flags))
	b = append(b, 0, 1, 0, 0, 0, 0, 0, 0) // qdcount=1

	for _, label := range splitLabels(name) {
		b = append(b, byte(len(label)))
		b = append(b, label...)
	}
	b = append(b, 0)
	b = append(b, byte(qtype>>8), byte(qtype), byte(qclass>>8), byte(qclass))
	return b
}

func splitLabels(name string) []string {
	var labels []string
	start := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			if i > start {
				labels = append(labels, name[start:i])
			}
			start = i + 1
		}
	}
	if start < len(name) {
		labels = append(labels, name[start:])
	}
	return labels
}

func TestIsResponseToMatches(t *testing.T) {
	q := wire.ParseMessage(buildQuestionMessage(t, 42, 0, "example.com.", 1, 1))
	r := wire.ParseMessage(buildQuestionMessage(t, 42, 0, "example.com.", 1, 1))
	require.Nil(t, q.Err)
	require.Nil(t, r.Err)
	assert.NoError(t, isResponseTo(q, r))
}

func TestIsResponseToIDMismatch(t *testing.T) {
	q := wire.ParseMessage(buildQuestionMessage(t, 42, 0, "example.com.", 1, 1))
	r := wire.ParseMessage(buildQuestionMessage(t, 43, 0, "example.com.", 1, 1))
	err := isResponseTo(q, r)
	require.Error(t, err)
	_, ok := err.(*BadResponseError)
	assert.True(t, ok)
}

func TestIsResponseToQuestionMismatch(t *testing.T) {
	q := wire.ParseMessage(buildQuestionMessage(t, 42, 0, "example.com.", 1, 1))
	r := wire.ParseMessage(buildQuestionMessage(t, 42, 0, "example.org.", 1, 1))
	err := isResponseTo(q, r)
	require.Error(t, err)
	_, ok := err.(*BadResponseError)
	assert.True(t, ok)
}
