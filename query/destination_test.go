package query

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUDPLiteral(t *testing.T) {
	r, err := resolveUDP("198.51.100.1", 53, nil, 0, FamilyUnspec)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.1", r.remote.IP.String())
	assert.Equal(t, 53, r.remote.Port)
	assert.Nil(t, r.local)
}

func TestResolveUDPFamilyMismatch(t *testing.T) {
	_, err := resolveUDP("198.51.100.1", 53, net.ParseIP("2001:db8::1"), 0, FamilyUnspec)
	require.Error(t, err)
	_, ok := err.(*ValueError)
	assert.True(t, ok)
}

func TestResolveUDPWildcardFromSourcePort(t *testing.T) {
	r, err := resolveUDP("198.51.100.1", 53, nil, 5000, FamilyUnspec)
	require.NoError(t, err)
	require.NotNil(t, r.local)
	assert.True(t, r.local.IP.Equal(net.IPv4zero))
	assert.Equal(t, 5000, r.local.Port)
}

func TestSelectByFamilyUnspecTakesFirst(t *testing.T) {
	ips := []net.IP{net.ParseIP("198.51.100.1"), net.ParseIP("2001:db8::1")}
	ip, err := selectByFamily(ips, FamilyUnspec)
	require.NoError(t, err)
	assert.True(t, ip.Equal(net.ParseIP("198.51.100.1")))
}

func TestSelectByFamilyFiltersToRequestedFamily(t *testing.T) {
	ips := []net.IP{net.ParseIP("198.51.100.1"), net.ParseIP("2001:db8::1")}
	ip, err := selectByFamily(ips, FamilyINET6)
	require.NoError(t, err)
	assert.True(t, ip.Equal(net.ParseIP("2001:db8::1")))
}

func TestSelectByFamilyNoMatch(t *testing.T) {
	ips := []net.IP{net.ParseIP("198.51.100.1")}
	_, err := selectByFamily(ips, FamilyINET6)
	require.Error(t, err)
	_, ok := err.(*ValueError)
	assert.True(t, ok)
}

func TestSourceMatchesExact(t *testing.T) {
	dest := &net.UDPAddr{IP: net.ParseIP("198.51.100.1"), Port: 53}
	same := &net.UDPAddr{IP: net.ParseIP("198.51.100.1"), Port: 53}
	other := &net.UDPAddr{IP: net.ParseIP("198.51.100.2"), Port: 53}
	assert.True(t, sourceMatches(dest, same))
	assert.False(t, sourceMatches(dest, other))
}

func TestSourceMatchesMulticastPortOnly(t *testing.T) {
	dest := &net.UDPAddr{IP: net.ParseIP("224.0.0.1"), Port: 53}
	other := &net.UDPAddr{IP: net.ParseIP("198.51.100.9"), Port: 53}
	assert.True(t, sourceMatches(dest, other))
}
