package apps_test

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"udptest/internal/app/apps"
	"udptest/internal/app/cfg"
	"udptest/internal/pkg/server"

	"github.com/stretchr/testify/require"
)

func TestNewServerApp(t *testing.T) {
	s, err := apps.NewServerApp()
	require.NoError(t, err)
	require.Equal(t, uint16(30000), s.Port)

	_, err = apps.NewServerApp(cfg.NewHostCfg("not a host!"))
	require.Error(t, err)
	_, err = apps.NewServerApp(cfg.NewMetricsCfg("nope"))
	require.Error(t, err)
	_, err = apps.NewServerApp(cfg.NewProgressCfg(nil))
	require.Error(t, err)
}

func TestNewClientApp(t *testing.T) {
	c, err := apps.NewClientApp()
	require.NoError(t, err)
	require.Equal(t, "localhost", c.Host)
	require.Equal(t, uint16(30000), c.Port)
	require.Nil(t, c.Sequence)

	seq := uint64(7)
	c, err = apps.NewClientApp(cfg.NewSequenceCfg(&seq), cfg.NewHostCfg("10.0.0.1"), cfg.NewPortCfg(4000))
	require.NoError(t, err)
	seq = 8
	require.Equal(t, uint64(7), *c.Sequence)
	require.Equal(t, "10.0.0.1", c.Host)
	require.Equal(t, uint16(4000), c.Port)

	_, err = apps.NewClientApp(cfg.NewPacingCfg(-time.Second, 0, 0))
	require.Error(t, err)
}

func TestServerAppStops(t *testing.T) {
	app, err := apps.NewServerApp(cfg.NewHostCfg("127.0.0.1"), cfg.NewPortCfg(0), cfg.NewProgressCfg(&bytes.Buffer{}))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server app did not stop")
	}
}

func TestClientApp(t *testing.T) {
	s, err := server.NewServer(server.WithBindHost("127.0.0.1"), server.WithPort(0))
	require.NoError(t, err)
	require.NoError(t, s.Listen())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Serve(ctx) }()

	addr := s.Addr().(*net.UDPAddr)
	progress := &bytes.Buffer{}
	app, err := apps.NewClientApp(
		cfg.NewHostCfg("127.0.0.1"),
		cfg.NewPortCfg(uint16(addr.Port)),
		cfg.NewPacingCfg(time.Millisecond, 2*time.Second, 3),
		cfg.NewProgressCfg(progress),
	)
	require.NoError(t, err)
	require.NoError(t, app.Run(ctx, nil))
	require.Equal(t, "+++", progress.String())
}
