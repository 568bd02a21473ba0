package session

import (
	"math/rand"
	"time"
)

// MaxRandomSequence bounds the seeds produced by NewRandomSequence.
const MaxRandomSequence = 1024

// NewRandomSequence returns a starting sequence number for a client run.
// It only needs to differ between runs, so it is not cryptographically random.
func NewRandomSequence() uint64 {
	r := rand.New(rand.NewSource(time.Now().UnixNano())) // nolint: gosec // not a security token
	return uint64(r.Intn(MaxRandomSequence))
}
