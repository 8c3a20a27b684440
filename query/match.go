package query

import "github.com/xtls/dnsquery/wire"

// isResponseTo reports whether reply answers query: matching id, matching
// opcode, and, when both carry at least one question, a matching first
// question. A reply with no question section at all — as some malformed or
// minimal-response servers send — is accepted on id/opcode alone, the same
// leniency dnspython's is_response affords.
func isResponseTo(query, reply *wire.Message) error {
	if reply.ID != query.ID {
		return &BadResponseError{Reason: "id does not match query"}
	}
	if reply.Opcode() != query.Opcode() {
		return &BadResponseError{Reason: "opcode does not match query"}
	}
	if len(query.Question) == 0 || len(reply.Question) == 0 {
		return nil
	}
	qq, rq := query.Question[0], reply.Question[0]
	if qq.Name != rq.Name || qq.Type != rq.Type || qq.Class != rq.Class {
		return &BadResponseError{Reason: "question section does not match query"}
	}
	return nil
}
