package handler

import "github.com/pkg/errors"

// ErrUnknownPeer indicates a CHECK from an address that never sent BEGIN.
var ErrUnknownPeer = errors.New("unknown peer")

// ErrUnexpectedKind indicates a message kind the server never accepts.
var ErrUnexpectedKind = errors.New("unexpected message kind")
