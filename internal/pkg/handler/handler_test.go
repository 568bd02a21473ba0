package handler

import (
	"context"
	"testing"

	"udptest/internal/pkg/checksum"
	"udptest/internal/pkg/message"
	"udptest/internal/pkg/session"
	"udptest/internal/pkg/telemetry"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Begin(addr string, seq uint64) (session.Session, error) {
	args := m.Called(addr, seq)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockStore) Get(addr string) (session.Session, error) {
	args := m.Called(addr)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockStore) Advance(addr string, from uint64) (session.Session, error) {
	args := m.Called(addr, from)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockStore) Len() int {
	return m.Called().Int(0)
}

const peer = "127.0.0.1:40000"

func newTestHandler(t *testing.T) (*Handler, *session.MemoryStore) {
	store := session.NewMemoryStore()
	h, err := NewHandler(WithSessionStore(store))
	require.NoError(t, err)
	return h, store
}

func handle(t *testing.T, h *Handler, addr string, msg message.Message) message.Message {
	reply, err := h.Handle(context.Background(), addr, msg)
	require.NoError(t, err)
	return reply
}

func TestHandshakeAndRounds(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, message.Okay{Seq: 7}, handle(t, h, peer, message.Begin{Seq: 7}))
	require.Equal(t, message.Next{Digest: checksum.Sum(8)}, handle(t, h, peer, message.Check{Digest: checksum.Sum(7)}))
	require.Equal(t, message.Next{Digest: checksum.Sum(9)}, handle(t, h, peer, message.Check{Digest: checksum.Sum(8)}))
}

func TestMismatchKeepsSequence(t *testing.T) {
	h, store := newTestHandler(t)
	before := testutil.ToFloat64(telemetry.MismatchesTotal)
	handle(t, h, peer, message.Begin{Seq: 7})
	require.Equal(t, message.Error{Seq: 7}, handle(t, h, peer, message.Check{Digest: "bogus"}))
	require.Equal(t, before+1, testutil.ToFloat64(telemetry.MismatchesTotal))

	sess, err := store.Get(peer)
	require.NoError(t, err)
	require.Equal(t, uint64(7), sess.Sequence)

	require.Equal(t, message.Next{Digest: checksum.Sum(8)}, handle(t, h, peer, message.Check{Digest: checksum.Sum(7)}))
}

func TestBeginResetsSession(t *testing.T) {
	h, _ := newTestHandler(t)
	handle(t, h, peer, message.Begin{Seq: 7})
	handle(t, h, peer, message.Check{Digest: checksum.Sum(7)})
	require.Equal(t, message.Okay{Seq: 100}, handle(t, h, peer, message.Begin{Seq: 100}))
	require.Equal(t, message.Next{Digest: checksum.Sum(101)}, handle(t, h, peer, message.Check{Digest: checksum.Sum(100)}))
}

func TestUnknownPeer(t *testing.T) {
	h, store := newTestHandler(t)
	handle(t, h, peer, message.Begin{Seq: 7})

	reply, err := h.Handle(context.Background(), "127.0.0.1:40001", message.Check{Digest: checksum.Sum(7)})
	require.True(t, errors.Is(err, ErrUnknownPeer))
	require.Equal(t, message.Reject{Reason: "unknown peer"}, reply)

	sess, err := store.Get(peer)
	require.NoError(t, err)
	require.Equal(t, uint64(7), sess.Sequence)
	require.Equal(t, 1, store.Len())
}

func TestUnexpectedKind(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, msg := range []message.Message{
		message.Okay{Seq: 1},
		message.Next{Digest: checksum.Sum(1)},
		message.Error{Seq: 1},
		message.Reject{Reason: "x"},
	} {
		reply, err := h.Handle(context.Background(), peer, msg)
		require.True(t, errors.Is(err, ErrUnexpectedKind))
		require.IsType(t, message.Reject{}, reply)
	}
}

func TestStoreFailures(t *testing.T) {
	store := &mockStore{}
	h, err := NewHandler(WithSessionStore(store))
	require.NoError(t, err)
	boom := errors.New("boom")

	store.On("Begin", peer, uint64(7)).Return(session.Session{}, boom).Once()
	reply, err := h.Handle(context.Background(), peer, message.Begin{Seq: 7})
	require.Nil(t, reply)
	require.True(t, errors.Is(err, boom))

	store.On("Get", peer).Return(session.Session{}, boom).Once()
	reply, err = h.Handle(context.Background(), peer, message.Check{Digest: checksum.Sum(7)})
	require.Nil(t, reply)
	require.True(t, errors.Is(err, boom))

	store.AssertExpectations(t)
}

func TestConcurrentAdvanceIsMismatch(t *testing.T) {
	store := &mockStore{}
	h, err := NewHandler(WithSessionStore(store))
	require.NoError(t, err)

	store.On("Get", peer).Return(session.Session{Sequence: 7}, nil).Once()
	store.On("Advance", peer, uint64(7)).Return(session.Session{Sequence: 8}, session.ErrSequenceChanged).Once()
	reply, err := h.Handle(context.Background(), peer, message.Check{Digest: checksum.Sum(7)})
	require.NoError(t, err)
	require.Equal(t, message.Error{Seq: 8}, reply)
	store.AssertExpectations(t)
}
