// File: internal/errs/errors.go
package errs

import (
	"errors"
	"fmt"
	"time"
)

// ConfigurationError reports an invalid configuration value. It is fatal at
// startup and never retried.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s %s", e.Key, e.Reason)
}

// ConnectError reports that the remote debugging endpoint could not be reached
// or that no browser answered on it.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("cannot connect to browser at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ElementNotFoundError is returned when a selector did not become visible
// within its wait budget.
type ElementNotFoundError struct {
	Selector string
	Timeout  time.Duration
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %q not found within %s", e.Selector, e.Timeout)
}

// NavigationTimeoutError is returned when a navigation did not settle within
// its wait budget.
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *NavigationTimeoutError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("navigation did not settle within %s", e.Timeout)
	}
	return fmt.Sprintf("navigation to %s did not settle within %s", e.URL, e.Timeout)
}

// ConnectionLostError marks a failure caused by the browser connection or the
// attached page going away. The retry executor reconnects instead of waiting
// out the ordinary retry delay when it sees one.
type ConnectionLostError struct {
	Op  string
	Err error
}

func (e *ConnectionLostError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connection lost during %s", e.Op)
	}
	return fmt.Sprintf("connection lost during %s: %v", e.Op, e.Err)
}

func (e *ConnectionLostError) Unwrap() error { return e.Err }

// EmptyTermListError is returned when a run is asked to draw from a term list
// with no entries.
type EmptyTermListError struct {
	Source string
}

func (e *EmptyTermListError) Error() string {
	if e.Source == "" {
		return "term list is empty"
	}
	return fmt.Sprintf("term list from %s is empty", e.Source)
}

// IsConnectionLost reports whether err carries a ConnectionLostError anywhere
// in its chain.
func IsConnectionLost(err error) bool {
	var lost *ConnectionLostError
	return errors.As(err, &lost)
}

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
