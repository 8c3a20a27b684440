// Package log provides the process-wide logging sink used by every layer of
// the client: wire parsing, transports and the zone transfer engine all
// funnel through Record so that a caller can install a single handler.
package log

import (
	"fmt"
	"sync"
)

// Severity classifies a log message, mirroring the levels a caller would
// want to filter on.
type Severity int32

const (
	Severity_Unknown Severity = iota
	Severity_Error
	Severity_Warning
	Severity_Info
	Severity_Debug
)

func (s Severity) String() string {
	switch s {
	case Severity_Error:
		return "Error"
	case Severity_Warning:
		return "Warning"
	case Severity_Info:
		return "Info"
	case Severity_Debug:
		return "Debug"
	default:
		return "Unknown"
	}
}

// Message is anything that can be recorded: it knows how to render itself.
// It carries no severity of its own.
type Message interface {
	fmt.Stringer
}

// Handler receives every recorded message. Install one with RegisterHandler.
type Handler interface {
	Handle(msg Message)
}

type generalMessage struct {
	Severity Severity
	Content  Message
}

func (m *generalMessage) String() string {
	return m.Content.String()
}

var (
	handlerAccess sync.RWMutex
	handler       Handler = noOpHandler{}
)

type noOpHandler struct{}

func (noOpHandler) Handle(Message) {}

// RegisterHandler installs the process-wide log sink. Safe to call once
// during initialization; must not be mutated while transports are active.
func RegisterHandler(h Handler) {
	if h == nil {
		return
	}
	handlerAccess.Lock()
	defer handlerAccess.Unlock()
	handler = h
}

// Record submits a message to the currently installed handler.
func Record(msg Message) {
	handlerAccess.RLock()
	h := handler
	handlerAccess.RUnlock()
	h.Handle(msg)
}
