// Package handler implements the server side of a single protocol exchange.
package handler

import (
	"context"

	"udptest/internal/pkg/checksum"
	"udptest/internal/pkg/log"
	"udptest/internal/pkg/message"
	"udptest/internal/pkg/session"
	"udptest/internal/pkg/telemetry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Handler turns one request from a peer into the reply for that peer.
type Handler struct {
	store session.Store
}

// Cfg configures a Handler.
type Cfg func(*Handler) error

// WithSessionStore sets the session store.
func WithSessionStore(store session.Store) Cfg {
	return func(h *Handler) error {
		h.store = store
		return nil
	}
}

// NewHandler creates a new Handler.
func NewHandler(cfgs ...Cfg) (*Handler, error) {
	h := &Handler{}
	for _, cfg := range cfgs {
		if err := cfg(h); err != nil {
			return nil, errors.Wrap(err, "apply handler cfg failed")
		}
	}
	if h.store == nil {
		h.store = session.NewMemoryStore()
	}
	return h, nil
}

// Handle processes msg received from addr and returns the reply to send back.
// A non-nil reply is returned alongside ErrUnknownPeer and ErrUnexpectedKind so
// the peer learns about the violation.
func (h *Handler) Handle(ctx context.Context, addr string, msg message.Message) (message.Message, error) {
	telemetry.DatagramsTotal.WithLabelValues(msg.Kind().String()).Inc()
	switch m := msg.(type) {
	case message.Begin:
		return h.begin(ctx, addr, m)
	case message.Check:
		return h.check(ctx, addr, m)
	}
	telemetry.ProtocolErrorsTotal.WithLabelValues(telemetry.ReasonUnexpectedKind).Inc()
	return message.Reject{Reason: "unexpected " + msg.Kind().String()},
		errors.Wrapf(ErrUnexpectedKind, "%s from %s", msg.Kind(), addr)
}

func (h *Handler) begin(_ context.Context, addr string, msg message.Begin) (message.Message, error) {
	sess, err := h.store.Begin(addr, msg.Seq)
	if err != nil {
		return nil, errors.Wrap(err, "begin session failed")
	}
	telemetry.Peers.Set(float64(h.store.Len()))
	logger.WithFields(logrus.Fields{
		"addr":    addr,
		"session": sess.ID.String(),
		"seq":     sess.Sequence,
	}).Info("new connection")
	return message.Okay{Seq: msg.Seq}, nil
}

func (h *Handler) check(_ context.Context, addr string, msg message.Check) (message.Message, error) {
	sess, err := h.store.Get(addr)
	if errors.Is(err, session.ErrSessionNotFound) {
		telemetry.ProtocolErrorsTotal.WithLabelValues(telemetry.ReasonUnknownPeer).Inc()
		return message.Reject{Reason: ErrUnknownPeer.Error()}, errors.Wrapf(ErrUnknownPeer, "CHECK from %s", addr)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get session failed")
	}

	expected := checksum.Sum(sess.Sequence)
	if msg.Digest != expected {
		return h.mismatch(addr, sess, msg.Digest), nil
	}

	next, err := h.store.Advance(addr, sess.Sequence)
	if errors.Is(err, session.ErrSequenceChanged) {
		return h.mismatch(addr, next, msg.Digest), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "advance session failed")
	}
	reply := message.Next{Digest: checksum.Sum(next.Sequence)}
	logger.WithFields(log.MessageToFields(reply)).WithField("addr", addr).Trace("round accepted")
	return reply, nil
}

func (h *Handler) mismatch(addr string, sess session.Session, received string) message.Message {
	telemetry.MismatchesTotal.Inc()
	logger.WithFields(logrus.Fields{
		"addr":        addr,
		"session":     sess.ID.String(),
		"seq":         sess.Sequence,
		"received":    received,
		"expected":    checksum.Sum(sess.Sequence),
		"well_formed": checksum.Valid(received),
	}).Warn("checksum sequence mismatch")
	return message.Error{Seq: sess.Sequence}
}
