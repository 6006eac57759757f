package protocol

import (
	"errors"
	"fmt"
)

// ErrFrameTooLarge is wrapped by ReadError when a declared frame length
// exceeds the caller's limit.
var ErrFrameTooLarge = errors.New("frame too large")

// ReadError indicates a frame could not be read in full.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read frame: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError indicates a frame could not be written or flushed.
// The connection is in an indeterminate state afterwards and must be closed.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write frame: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err is a framing failure.
func IsProtocolError(err error) bool {
	var re *ReadError
	var we *WriteError
	return errors.As(err, &re) || errors.As(err, &we)
}

// SerializationOp names the direction of a failed (de)serialization.
type SerializationOp string

const (
	OpEncode SerializationOp = "encode"
	OpDecode SerializationOp = "decode"
)

// SerializationError indicates a command or status payload could not be
// encoded or decoded.
type SerializationError struct {
	Op  SerializationOp
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s payload: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// IsSerializationError reports whether err is a payload (de)serialization failure.
func IsSerializationError(err error) bool {
	var se *SerializationError
	return errors.As(err, &se)
}

func decodeErr(format string, args ...any) error {
	return &SerializationError{Op: OpDecode, Err: fmt.Errorf(format, args...)}
}
