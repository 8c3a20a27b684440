package query

import (
	"time"

	"github.com/xtls/dnsquery/wire"
)

// Response is a parsed reply together with the round-trip time the
// transport measured for it, floored at zero in case of clock skew between
// begin and finish.
type Response struct {
	*wire.Message
	Time time.Duration
}

func newResponse(m *wire.Message, begin time.Time) *Response {
	elapsed := time.Since(begin)
	if elapsed < 0 {
		elapsed = 0
	}
	return &Response{Message: m, Time: elapsed}
}
