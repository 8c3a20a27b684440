// Package wire implements the byte-level DNS message parser: a cursor
// primitive (Parser) and the message-level assembler (Message) that turns a
// raw buffer into offset-annotated questions and resource records while
// localizing rdata failures instead of aborting the whole parse.
package wire

import "github.com/xtls/dnsquery/common/errors"

// FormError reports that the wire buffer violates RFC 1035 grammar: a short
// header, a bad name, an overlong label, a forward compression pointer, or
// an rdlength that exceeds the remaining buffer.
type FormError struct {
	base *errors.Error
	msg  string
}

func (e *FormError) Error() string { return e.msg }

func formError(msg string) *FormError {
	return &FormError{base: errors.New(msg), msg: msg}
}

var (
	errForwardPointer = formError("A DNS compression pointer points forward instead of backward.")
	errMalformed      = formError("DNS message is malformed.")
	errNameTooLong    = formError("DNS name is too long.")
	errLabelTooLong   = formError("DNS label is too long.")
)
