package transport

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a transport failure
type ErrorKind int

const (
	ConnectFailed ErrorKind = iota + 1
	ProtocolError
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectFailed:
		return "connect failed"
	case ProtocolError:
		return "protocol error"
	default:
		return fmt.Sprintf("transport error kind %d", int(k))
	}
}

// Sentinels matched by (*Error).Is.
var (
	ErrConnectFailed = errors.New("transport: connect failed")
	ErrProtocol      = errors.New("transport: protocol error")
)

// Error is returned when a request never produced an HTTP status.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := "transport: " + e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrConnectFailed:
		return e.Kind == ConnectFailed
	case ErrProtocol:
		return e.Kind == ProtocolError
	}
	return false
}
