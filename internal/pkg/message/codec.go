package message

import (
	"fmt"

	"github.com/pkg/errors"
	"go.dedis.ch/protobuf"
)

// envelope is the wire representation. Exactly one field is set.
type envelope struct {
	Begin  *Begin
	Okay   *Okay
	Check  *Check
	Next   *Next
	Error  *Error
	Reject *Reject
}

// Encode serializes msg into a single datagram payload.
func Encode(msg Message) ([]byte, error) {
	env := &envelope{}
	switch m := msg.(type) {
	case Begin:
		env.Begin = &m
	case Okay:
		env.Okay = &m
	case Check:
		env.Check = &m
	case Next:
		env.Next = &m
	case Error:
		env.Error = &m
	case Reject:
		env.Reject = &m
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "encode %T failed", msg)
	}
	buf, err := protobuf.Encode(env)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s failed", msg.Kind())
	}
	if len(buf) > MaxDatagramSize {
		return nil, errors.Wrapf(ErrTooLarge, "encode %s failed: %d bytes", msg.Kind(), len(buf))
	}
	return buf, nil
}

// Decode parses a datagram payload. Any failure wraps ErrMalformed.
func Decode(buf []byte) (msg Message, err error) {
	if len(buf) == 0 {
		return nil, errors.Wrap(ErrMalformed, "empty datagram")
	}
	if len(buf) > MaxDatagramSize {
		return nil, errors.Wrapf(ErrMalformed, "datagram of %d bytes", len(buf))
	}
	defer func() {
		// the reflection decoder may panic on hostile input
		if r := recover(); r != nil {
			msg, err = nil, errors.Wrap(ErrMalformed, fmt.Sprint(r))
		}
	}()
	env := &envelope{}
	if err := protobuf.Decode(buf, env); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return env.message()
}

func (env *envelope) message() (Message, error) {
	var msgs []Message
	if env.Begin != nil {
		msgs = append(msgs, *env.Begin)
	}
	if env.Okay != nil {
		msgs = append(msgs, *env.Okay)
	}
	if env.Check != nil {
		msgs = append(msgs, *env.Check)
	}
	if env.Next != nil {
		msgs = append(msgs, *env.Next)
	}
	if env.Error != nil {
		msgs = append(msgs, *env.Error)
	}
	if env.Reject != nil {
		msgs = append(msgs, *env.Reject)
	}
	if len(msgs) != 1 {
		return nil, errors.Wrapf(ErrMalformed, "%d variants set", len(msgs))
	}
	return msgs[0], nil
}
