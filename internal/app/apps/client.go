package apps

import (
	"context"
	"io"
	"os"
	"time"

	"udptest/internal"
	"udptest/internal/pkg/client"
	"udptest/internal/pkg/telemetry"
	"udptest/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ClientAppCfg configures a ClientApp.
type ClientAppCfg interface {
	ApplyClientApp(*ClientApp) error
}

// ClientApp probes a server until the first inconsistency.
type ClientApp struct {
	Host        string `validate:"required"`
	Port        uint16 `validate:"required"`
	Interval    time.Duration
	Timeout     time.Duration `validate:"gte=0"`
	Rounds      uint64
	Sequence    *uint64
	MetricsAddr string `validate:"omitempty,hostname_port"`
	Progress    io.Writer
}

// NewClientApp creates a new ClientApp.
func NewClientApp(cfgs ...ClientAppCfg) (*ClientApp, error) {
	app := &ClientApp{
		Host:     client.DefaultHost,
		Interval: client.DefaultInterval,
		Progress: os.Stdout,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyClientApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ClientApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = internal.DefaultPort
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ClientApp failed")
	}
	return app, nil
}

// Run connects to the server and runs the client until it fails, finishes or ctx is done.
func (app *ClientApp) Run(ctx context.Context, _ []string) error {
	cfgs := []client.Cfg{
		client.WithServerAddr(app.Host, app.Port),
		client.WithInterval(app.Interval),
		client.WithTimeout(app.Timeout),
		client.WithRounds(app.Rounds),
		client.WithProgress(app.Progress),
	}
	if app.Sequence != nil {
		cfgs = append(cfgs, client.WithSequence(*app.Sequence))
	}
	c, err := client.NewClient(cfgs...)
	if err != nil {
		return errors.Wrap(err, "create client failed")
	}
	if app.MetricsAddr != "" {
		go serveMetrics(ctx, app.MetricsAddr)
	}
	if err := c.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect client failed")
	}
	defer func() { _ = c.Close() }()
	if err := c.Run(ctx); err != nil {
		return errors.Wrap(err, "run client failed")
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string) {
	if err := telemetry.Serve(ctx, addr); err != nil {
		logger.WithError(err).Error("metrics endpoint stopped")
	}
}
