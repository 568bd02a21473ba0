package client

import "github.com/pkg/errors"

// ErrNotConnected indicates that Connect has not been called.
var ErrNotConnected = errors.New("not connected")

// ErrHandshakeFailed indicates that the server did not echo the BEGIN sequence.
var ErrHandshakeFailed = errors.New("connection failed")

// ErrSequenceMismatch indicates that client and server no longer agree on the sequence.
var ErrSequenceMismatch = errors.New("sequence mismatch")

// ErrRejected indicates that the server refused a request as a protocol violation.
var ErrRejected = errors.New("rejected by server")

// ErrTimeout indicates that no reply arrived within the receive timeout.
var ErrTimeout = errors.New("receive timeout")

// ErrUnexpectedReply indicates a reply that is not valid at this point of the protocol.
var ErrUnexpectedReply = errors.New("unexpected reply")
