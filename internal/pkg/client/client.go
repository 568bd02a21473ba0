package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"udptest/internal/pkg/checksum"
	"udptest/internal/pkg/log"
	"udptest/internal/pkg/message"
	"udptest/internal/pkg/session"
	"udptest/internal/pkg/telemetry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Defaults for a Client.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 30000
	DefaultInterval = 250 * time.Millisecond
)

// Client probes one server until the first inconsistency.
type Client struct {
	serverAddr string
	seq        uint64
	interval   time.Duration
	timeout    time.Duration
	limit      uint64
	progress   io.Writer

	rounds uint64
	conn   *net.UDPConn
}

// Cfg configures a Client.
type Cfg func(*Client) error

// WithServerAddr sets the server to connect to.
func WithServerAddr(host string, port uint16) Cfg {
	return func(c *Client) error {
		if host == "" {
			host = DefaultHost
		}
		c.serverAddr = net.JoinHostPort(host, strconv.Itoa(int(port)))
		return nil
	}
}

// WithSequence sets the starting sequence number instead of a random one.
func WithSequence(seq uint64) Cfg {
	return func(c *Client) error {
		c.seq = seq
		return nil
	}
}

// WithInterval sets the pause between rounds.
func WithInterval(d time.Duration) Cfg {
	return func(c *Client) error {
		if d < 0 {
			return errors.Errorf("negative interval %s", d)
		}
		c.interval = d
		return nil
	}
}

// WithTimeout sets how long to wait for each reply. Zero waits forever.
func WithTimeout(d time.Duration) Cfg {
	return func(c *Client) error {
		if d < 0 {
			return errors.Errorf("negative timeout %s", d)
		}
		c.timeout = d
		return nil
	}
}

// WithRounds stops the client after n successful rounds. Zero runs forever.
func WithRounds(n uint64) Cfg {
	return func(c *Client) error {
		c.limit = n
		return nil
	}
}

// WithProgress sets where a progress mark is written for every successful round.
func WithProgress(w io.Writer) Cfg {
	return func(c *Client) error {
		if w == nil {
			return errors.New("nil progress writer")
		}
		c.progress = w
		return nil
	}
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfgs ...Cfg) (*Client, error) {
	client := &Client{
		serverAddr: net.JoinHostPort(DefaultHost, strconv.Itoa(DefaultPort)),
		seq:        session.NewRandomSequence(),
		interval:   DefaultInterval,
		progress:   io.Discard,
	}
	for _, cfg := range cfgs {
		if err := cfg(client); err != nil {
			return nil, errors.Wrap(err, "apply Client cfg failed")
		}
	}
	return client, nil
}

// Connect dials the server. UDP is connectionless, so this only fixes the peer address.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return errors.Wrap(err, "close client connection failed")
		}
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", c.serverAddr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s failed", c.serverAddr)
	}
	c.conn = conn.(*net.UDPConn)
	return nil
}

// Close releases the socket.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return errors.Wrap(err, "close client connection failed")
}

// Sequence returns the client's current sequence number.
func (c *Client) Sequence() uint64 {
	return c.seq
}

// Rounds returns the number of successful rounds so far.
func (c *Client) Rounds() uint64 {
	return c.rounds
}

// Handshake establishes the session at the client's current sequence number.
func (c *Client) Handshake(ctx context.Context) error {
	begin := message.Begin{Seq: c.seq}
	reply, err := c.roundTrip(ctx, begin)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrapf(ErrHandshakeFailed, "%v", err)
	}
	if reply != (message.Okay{Seq: c.seq}) {
		logger.WithFields(log.MessageToFields(reply)).WithField("seq", c.seq).Error("handshake rejected")
		return errors.Wrapf(ErrHandshakeFailed, "expected OKAY %d, received %s", c.seq, reply.Kind())
	}
	logger.WithFields(logrus.Fields{
		"server": c.serverAddr,
		"seq":    c.seq,
	}).Info("connection okay")
	return nil
}

// Run performs the handshake and then checks rounds until an inconsistency is found,
// the round limit is reached or ctx is done. Cancellation is not an error.
func (c *Client) Run(ctx context.Context) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.Handshake(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	for c.limit == 0 || c.rounds < c.limit {
		if err := c.round(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if c.limit != 0 && c.rounds >= c.limit {
			break
		}
		timer := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
	logger.WithFields(logrus.Fields{
		"rounds": c.rounds,
		"seq":    c.seq,
	}).Info("client completed successfully")
	return nil
}

// round performs one CHECK/NEXT exchange.
func (c *Client) round(ctx context.Context) error {
	expected := checksum.Sum(c.seq + 1)
	start := time.Now()
	reply, err := c.roundTrip(ctx, message.Check{Digest: checksum.Sum(c.seq)})
	if err != nil {
		return err
	}
	switch m := reply.(type) {
	case message.Next:
		if m.Digest != expected {
			c.logMismatch(expected, m.Digest)
			return errors.Wrapf(ErrSequenceMismatch, "%s != %s", expected, m.Digest)
		}
		telemetry.RoundDuration.Observe(time.Since(start).Seconds())
		telemetry.RoundsTotal.Inc()
		c.seq++
		c.rounds++
		fmt.Fprint(c.progress, "+")
		return nil
	case message.Error:
		c.logMismatch(expected, fmt.Sprintf("ERROR %d", m.Seq))
		return errors.Wrapf(ErrSequenceMismatch, "server holds %d, client holds %d", m.Seq, c.seq)
	case message.Reject:
		return errors.Wrap(ErrRejected, m.Reason)
	}
	return errors.Wrapf(ErrUnexpectedReply, "%s during round", reply.Kind())
}

func (c *Client) logMismatch(expected, received string) {
	logger.WithFields(logrus.Fields{
		"seq":      c.seq,
		"expected": expected,
		"received": received,
	}).Error("error communicating with server")
}

// roundTrip sends msg and waits for one reply.
func (c *Client) roundTrip(ctx context.Context, msg message.Message) (message.Message, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	out, err := message.Encode(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encode message failed")
	}
	if _, err := c.conn.Write(out); err != nil {
		return nil, errors.Wrapf(err, "send %s failed", msg.Kind())
	}
	logger.WithFields(log.MessageToFields(msg)).Debug("sent message")

	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, errors.Wrap(err, "set read deadline failed")
	}
	// registered after the deadline above so cancellation always wins
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, message.MaxDatagramSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, errors.Wrapf(ErrTimeout, "no reply to %s within %s", msg.Kind(), c.timeout)
		}
		return nil, errors.Wrap(err, "receive reply failed")
	}
	reply, err := message.Decode(buf[:n])
	if err != nil {
		return nil, errors.Wrap(ErrUnexpectedReply, err.Error())
	}
	logger.WithFields(log.MessageToFields(reply)).Debug("received message")
	return reply, nil
}
