package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpirationFromTimeoutNil(t *testing.T) {
	e := expirationFromTimeout(nil)
	assert.True(t, e.unbound)
	assert.False(t, e.expired())
}

func TestExpirationFromTimeoutExpired(t *testing.T) {
	d := -time.Second
	e := expirationFromTimeout(&d)
	assert.True(t, e.expired())
}

func TestExpirationFromTimeoutFuture(t *testing.T) {
	d := time.Minute
	e := expirationFromTimeout(&d)
	assert.False(t, e.expired())
	assert.True(t, e.remaining() > 0)
}

func TestWithCtxDeadlineNarrowsToEarlier(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	e := withCtxDeadline(ctx, noExpiration)
	assert.False(t, e.unbound)
	assert.True(t, e.remaining() <= 10*time.Millisecond)
}

func TestWithCtxDeadlineKeepsTighterOption(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	d := time.Millisecond
	tighter := expirationFromTimeout(&d)
	e := withCtxDeadline(ctx, tighter)
	assert.True(t, e.remaining() < time.Minute)
}

func TestPerAttemptCap(t *testing.T) {
	d := time.Hour
	long := expirationFromTimeout(&d)
	capped := perAttemptCap(long, 2*time.Second)
	assert.True(t, capped.remaining() <= 2*time.Second)

	d2 := time.Millisecond
	short := expirationFromTimeout(&d2)
	stillShort := perAttemptCap(short, 2*time.Second)
	assert.True(t, stillShort.remaining() <= 2*time.Second)
}
