// Package xerr defines the error kinds surfaced by the fastdfs client.
//
// Each kind is a concrete type rather than a sentinel so that callers can
// extract context (status code, endpoint, deadline) via errors.As, in the
// same vein as aistore's cmn/cos error types.
package xerr

import (
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"
)

// ConfigError — invalid client configuration, fatal at construction.
type ConfigError struct {
	Field  string
	Reason string
}

func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("fastdfs: invalid config field %q: %s", e.Field, e.Reason)
}

// ConnectError — TCP connect failed or was refused.
type ConnectError struct {
	Addr string
	Err  error
}

func NewConnectError(addr string, err error) *ConnectError {
	return &ConnectError{Addr: addr, Err: errors.Wrap(err, "connect")}
}

func (e *ConnectError) Error() string { return fmt.Sprintf("fastdfs: connect %s: %v", e.Addr, e.Err) }
func (e *ConnectError) Unwrap() error { return e.Err }

// TimeoutError — a configured deadline was exceeded.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func NewTimeoutError(op string, d time.Duration) *TimeoutError {
	return &TimeoutError{Op: op, Timeout: d}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fastdfs: %s timed out after %s", e.Op, e.Timeout)
}

func (*TimeoutError) Timeout() bool   { return true }
func (*TimeoutError) Temporary() bool { return true }

// ProtocolError — malformed frame, length mismatch, unknown command, codec failure.
type ProtocolError struct {
	Reason string
	Err    error
}

func NewProtocolError(reason string, cause error) *ProtocolError {
	return &ProtocolError{Reason: reason, Err: cause}
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fastdfs: protocol error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("fastdfs: protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ServerError — response header status != 0.
type ServerError struct {
	Command byte
	Status  uint8
}

func NewServerError(command byte, status uint8) *ServerError {
	return &ServerError{Command: command, Status: status}
}

func (e *ServerError) Error() string {
	if msg, ok := statusText[e.Status]; ok {
		return fmt.Sprintf("fastdfs: server error (cmd=%d status=%d): %s", e.Command, e.Status, msg)
	}
	return fmt.Sprintf("fastdfs: server error (cmd=%d status=%d)", e.Command, e.Status)
}

// statusText mirrors the handful of FastDFS status codes applications most
// commonly branch on; anything else is reported by number alone.
var statusText = map[uint8]string{
	2:  "No such file or directory",
	17: "File exists",
	28: "No space left on device",
}

// PoolExhausted — acquire timed out with all connections in use.
type PoolExhausted struct {
	Endpoint string
	Timeout  time.Duration
}

func NewPoolExhausted(endpoint string, d time.Duration) *PoolExhausted {
	return &PoolExhausted{Endpoint: endpoint, Timeout: d}
}

func (e *PoolExhausted) Error() string {
	return fmt.Sprintf("fastdfs: pool exhausted for %s after %s", e.Endpoint, e.Timeout)
}

func (*PoolExhausted) Timeout() bool { return true }

// StreamError — download sink write failed.
type StreamError struct {
	Err error
}

func NewStreamError(cause error) *StreamError {
	return &StreamError{Err: errors.Wrap(cause, "sink write")}
}

func (e *StreamError) Error() string { return fmt.Sprintf("fastdfs: stream error: %v", e.Err) }
func (e *StreamError) Unwrap() error { return e.Err }

// Cancelled — caller cancellation observed mid-operation.
type Cancelled struct {
	Op string
}

func NewCancelled(op string) *Cancelled { return &Cancelled{Op: op} }
func (e *Cancelled) Error() string      { return fmt.Sprintf("fastdfs: %s cancelled", e.Op) }

//
// classifiers — grounded on cmn/cos's IsErrConnectionRefused/IsRetriableConnErr family
//

// IsRetriable reports whether a fresh connect attempt might succeed where
// this error occurred: a ConnectError qualifies, and so does any error whose
// chain holds a net.Error that is not a timeout.
func IsRetriable(err error) bool {
	var ce *ConnectError
	if errors.As(err, &ce) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && !ne.Timeout()
}

// IsTimeout reports whether err represents an exceeded deadline.
func IsTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var t timeouter
	return errors.As(err, &t) && t.Timeout()
}

// IsServerError reports whether err is a FastDFS server-side status failure,
// optionally extracting it.
func IsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	ok := errors.As(err, &se)
	return se, ok
}
