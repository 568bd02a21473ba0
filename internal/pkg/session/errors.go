package session

import "errors"

// ErrSessionNotFound is returned for a peer that never sent BEGIN.
var ErrSessionNotFound = errors.New("session not found")

// ErrSequenceChanged is returned when a session moved on before it could be advanced.
var ErrSequenceChanged = errors.New("session sequence changed")
