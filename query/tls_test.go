package query

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVerifyTrueUsesSystemPool(t *testing.T) {
	o := newOptions(853)
	insecure, pool, err := resolveVerify(o, "198.51.100.1")
	require.NoError(t, err)
	assert.False(t, insecure)
	assert.Nil(t, pool)
}

func TestResolveVerifyFalseDisablesVerification(t *testing.T) {
	o := newOptions(853)
	WithVerify(false)(o)
	insecure, _, err := resolveVerify(o, "resolver.example")
	require.NoError(t, err)
	assert.True(t, insecure)
}

func TestResolveVerifyAddressLiteralWithoutHostnameIsInsecure(t *testing.T) {
	o := newOptions(853)
	insecure, _, err := resolveVerify(o, "198.51.100.1")
	require.NoError(t, err)
	assert.True(t, insecure)
}

func TestResolveVerifyRejectsBadType(t *testing.T) {
	o := newOptions(853)
	WithVerify(42)(o)
	_, _, err := resolveVerify(o, "resolver.example")
	require.Error(t, err)
	_, ok := err.(*ValueError)
	assert.True(t, ok)
}

func TestBuildUTLSConfigHonorsVerify(t *testing.T) {
	o := newOptions(853)
	WithVerify(false)(o)
	cfg, err := buildUTLSConfig(o, "resolver.example")
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestBuildUTLSConfigShortCircuitsOnTLSConfig(t *testing.T) {
	o := newOptions(853)
	WithVerify(false)(o) // should be ignored: WithTLSConfig takes precedence
	WithTLSConfig(&tls.Config{ServerName: "pinned.example", InsecureSkipVerify: false})(o)
	cfg, err := buildUTLSConfig(o, "resolver.example")
	require.NoError(t, err)
	assert.Equal(t, "pinned.example", cfg.ServerName)
	assert.False(t, cfg.InsecureSkipVerify)
}

func TestBuildGoTLSConfigShortCircuitsOnTLSConfig(t *testing.T) {
	o := newOptions(853)
	WithTLSConfig(&tls.Config{ServerName: "pinned.example"})(o)
	cfg, err := buildGoTLSConfig(o, "resolver.example")
	require.NoError(t, err)
	assert.Equal(t, "pinned.example", cfg.ServerName)
}
