package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"

	"udptest/internal/pkg/handler"
	"udptest/internal/pkg/log"
	"udptest/internal/pkg/message"
	"udptest/internal/pkg/session"
	"udptest/internal/pkg/telemetry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// DefaultPort is the port the server listens on unless configured otherwise.
const DefaultPort = 30000

// ErrNotListening is returned by Serve before Listen succeeded.
var ErrNotListening = errors.New("server is not listening")

// Server answers protocol requests from any number of peers on one UDP socket.
type Server struct {
	host     string
	port     uint16
	store    session.Store
	progress io.Writer

	handler *handler.Handler
	conn    *net.UDPConn
}

// Cfg configures a Server.
type Cfg func(*Server) error

// WithSessionStore sets the session store for the server.
func WithSessionStore(store session.Store) Cfg {
	return func(s *Server) error {
		s.store = store
		return nil
	}
}

// WithPort sets the UDP port to listen on. Port 0 picks a free port.
func WithPort(p uint16) Cfg {
	return func(s *Server) error {
		s.port = p
		return nil
	}
}

// WithBindHost restricts the server to one local address.
func WithBindHost(host string) Cfg {
	return func(s *Server) error {
		s.host = host
		return nil
	}
}

// WithProgress sets where a progress mark is written for every datagram.
func WithProgress(w io.Writer) Cfg {
	return func(s *Server) error {
		if w == nil {
			return errors.New("nil progress writer")
		}
		s.progress = w
		return nil
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	server := &Server{
		port:     DefaultPort,
		progress: io.Discard,
	}
	for _, cfg := range cfgs {
		if err := cfg(server); err != nil {
			return nil, errors.Wrap(err, "apply Server cfg failed")
		}
	}
	if server.store == nil {
		server.store = session.NewMemoryStore()
	}
	var err error
	server.handler, err = handler.NewHandler(handler.WithSessionStore(server.store))
	if err != nil {
		return nil, errors.Wrap(err, "new handler failed")
	}
	return server, nil
}

// Listen binds the UDP socket.
func (s *Server) Listen() error {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(s.host, strconv.Itoa(int(s.port))))
	if err != nil {
		return errors.Wrap(err, "resolve listen address failed")
	}
	s.conn, err = net.ListenUDP("udp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s failed", addr)
	}
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Run listens and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve processes datagrams one at a time until ctx is done. The socket is closed on return.
func (s *Server) Serve(ctx context.Context) error {
	if s.conn == nil {
		return ErrNotListening
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = s.conn.Close()
	}()

	logger.WithField("addr", s.conn.LocalAddr().String()).Info("server started")
	buf := make([]byte, message.MaxDatagramSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("server stopped")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return errors.Wrap(err, "read datagram failed")
			}
			logger.WithError(err).Warn("read datagram failed")
			continue
		}
		fmt.Fprint(s.progress, "+")
		s.serveDatagram(ctx, buf[:n], addr)
	}
}

// serveDatagram handles one request. Failures are logged and never returned.
func (s *Server) serveDatagram(ctx context.Context, buf []byte, addr *net.UDPAddr) {
	l := logger.WithField("addr", addr.String())
	msg, err := message.Decode(buf)
	if err != nil {
		telemetry.ProtocolErrorsTotal.WithLabelValues(telemetry.ReasonMalformed).Inc()
		l.WithError(err).WithField("len", len(buf)).Warn("dropped malformed datagram")
		return
	}
	l.WithFields(log.MessageToFields(msg)).Debug("received message")

	reply, err := s.handler.Handle(ctx, addr.String(), msg)
	if err != nil {
		l.WithError(err).Warn("handle message failed")
	}
	if reply == nil {
		return
	}
	out, err := message.Encode(reply)
	if err != nil {
		l.WithError(err).Error("encode reply failed")
		return
	}
	if _, err := s.conn.WriteToUDP(out, addr); err != nil {
		l.WithError(err).Warn("send reply failed")
		return
	}
	l.WithFields(log.MessageToFields(reply)).Debug("sent message")
}
