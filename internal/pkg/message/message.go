// Package message implements the datagram codec shared by the client and the server.
//
// Every datagram carries exactly one message. On the wire a message is a protobuf
// envelope with one populated variant; Decode rejects anything else with ErrMalformed.
package message

import (
	"fmt"
)

// MaxDatagramSize is the receive buffer size on both sides. Encoded messages must fit.
const MaxDatagramSize = 1024

// Kind identifies the variant of a Message.
type Kind uint8

// Message kinds.
const (
	KindBegin Kind = iota + 1
	KindOkay
	KindCheck
	KindNext
	KindError
	KindReject
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "BEGIN"
	case KindOkay:
		return "OKAY"
	case KindCheck:
		return "CHECK"
	case KindNext:
		return "NEXT"
	case KindError:
		return "ERROR"
	case KindReject:
		return "REJECT"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Message is one of Begin, Okay, Check, Next, Error or Reject.
type Message interface {
	Kind() Kind
}

// Begin asks the server to establish or reset the session at Seq.
type Begin struct {
	Seq uint64
}

// Okay accepts a handshake, echoing the sequence number.
type Okay struct {
	Seq uint64
}

// Check proves agreement on the current sequence number.
type Check struct {
	Digest string
}

// Next accepts a round and carries the digest of the following sequence number.
type Next struct {
	Digest string
}

// Error reports a digest mismatch along with the sequence number the server holds.
type Error struct {
	Seq uint64
}

// Reject reports a protocol violation, such as a CHECK from a peer without a session.
type Reject struct {
	Reason string
}

func (Begin) Kind() Kind  { return KindBegin }
func (Okay) Kind() Kind   { return KindOkay }
func (Check) Kind() Kind  { return KindCheck }
func (Next) Kind() Kind   { return KindNext }
func (Error) Kind() Kind  { return KindError }
func (Reject) Kind() Kind { return KindReject }
