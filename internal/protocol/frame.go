// Package protocol defines the wire format for daemon communication:
// length-prefixed frames carrying a binary-encoded Command in the request
// direction and a JSON IdleState (or nothing) in the response direction.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// headerSize is the length of the big-endian frame length prefix.
const headerSize = 4

// MaxRequestSize is the largest request frame the daemon accepts.
const MaxRequestSize = 64 << 10

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// WriteMessage writes payload as a single frame and flushes w if it is buffered.
// The prefix and payload go out in one Write so a frame is never interleaved
// with another writer's data on the same stream.
func WriteMessage(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return &WriteError{Err: fmt.Errorf("payload of %d bytes exceeds frame limit", len(payload))}
	}

	buf := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[headerSize:], payload)

	if _, err := w.Write(buf); err != nil {
		return &WriteError{Err: err}
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return &WriteError{Err: err}
		}
	}
	return nil
}

// ReadMessage reads one frame and returns its payload.
// It blocks until the declared length has been read in full.
func ReadMessage(r io.Reader) ([]byte, error) {
	return readMessage(r, 0)
}

// ReadMessageLimit is ReadMessage with a ceiling on the declared length,
// checked before the payload buffer is allocated. A zero max disables the check.
func ReadMessageLimit(r io.Reader, max uint32) ([]byte, error) {
	return readMessage(r, max)
}

func readMessage(r io.Reader, max uint32) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, &ReadError{Err: err}
	}

	n := binary.BigEndian.Uint32(header[:])
	if max > 0 && n > max {
		return nil, &ReadError{Err: fmt.Errorf("%w: %d bytes (limit %d)", ErrFrameTooLarge, n, max)}
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, &ReadError{Err: err}
	}
	return payload, nil
}
