// Package errors is a drop-in replacement for Golang lib 'errors', extended
// with severity and automatic caller tagging so that library errors double
// as log records.
package errors

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/xtls/dnsquery/common/log"
)

const modulePrefix = "github.com/xtls/dnsquery/"

type hasInnerError interface {
	Unwrap() error
}

type hasSeverity interface {
	Severity() log.Severity
}

// Error is an error object with an optional wrapped cause and a severity.
type Error struct {
	message  []interface{}
	caller   string
	inner    error
	severity log.Severity
}

// Error implements error.
func (err *Error) Error() string {
	b := strings.Builder{}
	if len(err.caller) > 0 {
		b.WriteString(err.caller)
		b.WriteString(": ")
	}
	b.WriteString(concat(err.message...))
	if err.inner != nil {
		b.WriteString(" > ")
		b.WriteString(err.inner.Error())
	}
	return b.String()
}

// Unwrap implements hasInnerError.
func (err *Error) Unwrap() error {
	return err.inner
}

// Base attaches an underlying cause to this error.
func (err *Error) Base(e error) *Error {
	err.inner = e
	return err
}

func (err *Error) atSeverity(s log.Severity) *Error {
	err.severity = s
	return err
}

// Severity returns the effective severity, deferring to the innermost cause
// if it reports a lower (more urgent) one.
func (err *Error) Severity() log.Severity {
	if err.inner == nil {
		return err.severity
	}
	if s, ok := err.inner.(hasSeverity); ok {
		if inner := s.Severity(); inner < err.severity {
			return inner
		}
	}
	return err.severity
}

func (err *Error) AtDebug() *Error   { return err.atSeverity(log.Severity_Debug) }
func (err *Error) AtInfo() *Error    { return err.atSeverity(log.Severity_Info) }
func (err *Error) AtWarning() *Error { return err.atSeverity(log.Severity_Warning) }
func (err *Error) AtError() *Error   { return err.atSeverity(log.Severity_Error) }

func (err *Error) String() string { return err.Error() }

// New returns a new error object, tagging it with the calling function.
func New(msg ...interface{}) *Error {
	return &Error{
		message:  msg,
		severity: log.Severity_Info,
		caller:   callerName(2),
	}
}

func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	name := runtime.FuncForPC(pc).Name()
	if strings.HasPrefix(name, modulePrefix) {
		name = name[len(modulePrefix):]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

func concat(parts ...interface{}) string {
	b := strings.Builder{}
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case error:
			b.WriteString(v.Error())
		case fmt.Stringer:
			b.WriteString(v.String())
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

// Cause unwraps err to its root cause.
func Cause(err error) error {
	if err == nil {
		return nil
	}
	for {
		inner, ok := err.(hasInnerError)
		if !ok {
			break
		}
		u := inner.Unwrap()
		if u == nil {
			break
		}
		err = u
	}
	return err
}

// GetSeverity returns the severity of err, or Info if it does not report one.
func GetSeverity(err error) log.Severity {
	if s, ok := err.(hasSeverity); ok {
		return s.Severity()
	}
	return log.Severity_Info
}
