package message

import (
	"strings"
	"testing"

	"udptest/internal/pkg/checksum"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	msgs := []Message{
		Begin{Seq: 0},
		Begin{Seq: 7},
		Okay{Seq: 1023},
		Check{Digest: checksum.Sum(7)},
		Check{Digest: "bogus"},
		Next{Digest: checksum.Sum(8)},
		Error{Seq: ^uint64(0)},
		Reject{Reason: "unknown peer"},
	}
	for _, msg := range msgs {
		buf, err := Encode(msg)
		require.NoError(t, err)
		require.LessOrEqual(t, len(buf), MaxDatagramSize)
		got, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, msg, got)
		require.Equal(t, msg.Kind(), got.Kind())
	}
}

func TestEncodeTooLarge(t *testing.T) {
	_, err := Encode(Check{Digest: strings.Repeat("a", 2*MaxDatagramSize)})
	require.True(t, errors.Is(err, ErrTooLarge))
}

func TestEncodeNil(t *testing.T) {
	_, err := Encode(nil)
	require.True(t, errors.Is(err, ErrUnknownKind))
}

func TestDecodeMalformed(t *testing.T) {
	for _, buf := range [][]byte{
		nil,
		{},
		{0xff, 0xff, 0xff},
		[]byte("\x04\bBEGIN\x0c"),
		make([]byte, MaxDatagramSize+1),
	} {
		msg, err := Decode(buf)
		require.Nil(t, msg)
		require.True(t, errors.Is(err, ErrMalformed), "buf %q: %v", buf, err)
	}
}

func TestDecodeAmbiguous(t *testing.T) {
	_, err := (&envelope{Begin: &Begin{Seq: 1}, Okay: &Okay{Seq: 1}}).message()
	require.True(t, errors.Is(err, ErrMalformed))
	_, err = (&envelope{}).message()
	require.True(t, errors.Is(err, ErrMalformed))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "BEGIN", KindBegin.String())
	require.Equal(t, "REJECT", KindReject.String())
	require.Equal(t, "Kind(42)", Kind(42).String())
}
