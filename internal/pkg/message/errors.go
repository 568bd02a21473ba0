package message

import "github.com/pkg/errors"

// ErrMalformed indicates that a datagram is not a well-formed message.
var ErrMalformed = errors.New("malformed message")

// ErrTooLarge indicates that an encoded message does not fit in a datagram.
var ErrTooLarge = errors.New("message exceeds datagram size")

// ErrUnknownKind indicates that a value cannot be encoded as a message.
var ErrUnknownKind = errors.New("unknown message kind")
