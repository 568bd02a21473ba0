package apps

import (
	"context"
	"io"
	"os"

	"udptest/internal"
	"udptest/internal/pkg/server"
	"udptest/internal/pkg/session"
	"udptest/internal/pkg/validate"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// ServerAppCfg configures a ServerApp.
type ServerAppCfg interface {
	ApplyServerApp(*ServerApp) error
}

// ServerApp answers clients on one UDP port.
type ServerApp struct {
	Bind        string `validate:"omitempty,hostname_rfc1123|ip"`
	Port        uint16
	MetricsAddr string `validate:"omitempty,hostname_port"`
	Progress    io.Writer
}

// NewServerApp creates a new ServerApp.
func NewServerApp(cfgs ...ServerAppCfg) (*ServerApp, error) {
	app := &ServerApp{
		Port:     internal.DefaultPort,
		Progress: os.Stdout,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyServerApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ServerApp cfg failed")
		}
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ServerApp failed")
	}
	return app, nil
}

// Run serves until ctx is done.
func (app *ServerApp) Run(ctx context.Context, _ []string) error {
	s, err := server.NewServer(
		server.WithSessionStore(session.NewMemoryStore()),
		server.WithBindHost(app.Bind),
		server.WithPort(app.Port),
		server.WithProgress(app.Progress),
	)
	if err != nil {
		return errors.Wrap(err, "create server failed")
	}
	if err := s.Listen(); err != nil {
		return errors.Wrap(err, "listen failed")
	}
	logger.WithField("port", app.Port).Info("server starting")
	if app.MetricsAddr != "" {
		go serveMetrics(ctx, app.MetricsAddr)
	}
	return errors.Wrap(s.Serve(ctx), "serve failed")
}
