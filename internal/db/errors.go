package db

import (
	"errors"
	"fmt"
)

// ErrConnectionNotFound is returned when an operation references a connection
// identifier that is absent from the registry, either because it was already
// closed or because it never existed.
var ErrConnectionNotFound = errors.New("connection not found")

// UnsupportedEngineError is returned when a config or stored handle names an
// engine no adapter is registered for.
type UnsupportedEngineError struct {
	Engine string
}

func (e *UnsupportedEngineError) Error() string {
	return fmt.Sprintf("unsupported engine: %q (available: %v)", e.Engine, RegisteredEngines())
}

// ConnectError is a connect-time failure: bad host, credentials, or network.
// The underlying driver error is preserved. No handle is registered when a
// ConnectError is returned.
type ConnectError struct {
	Engine string
	Host   string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s at %s: %v", e.Engine, e.Host, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
