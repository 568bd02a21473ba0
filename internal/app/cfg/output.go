package cfg

import (
	"io"

	"udptest/internal/app/apps"

	"github.com/pkg/errors"
)

// MetricsCfg enables the Prometheus endpoint.
type MetricsCfg struct {
	addr string
}

// NewMetricsCfg creates a new MetricsCfg. An empty addr disables the endpoint.
func NewMetricsCfg(addr string) *MetricsCfg {
	return &MetricsCfg{
		addr: addr,
	}
}

// ApplyClientApp applies the MetricsCfg to a ClientApp.
func (cfg MetricsCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.MetricsAddr = cfg.addr
	return nil
}

// ApplyServerApp applies the MetricsCfg to a ServerApp.
func (cfg MetricsCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.MetricsAddr = cfg.addr
	return nil
}

// ProgressCfg sets where progress marks are written.
type ProgressCfg struct {
	w io.Writer
}

// NewProgressCfg creates a new ProgressCfg.
func NewProgressCfg(w io.Writer) *ProgressCfg {
	return &ProgressCfg{
		w: w,
	}
}

// ApplyClientApp applies the ProgressCfg to a ClientApp.
func (cfg ProgressCfg) ApplyClientApp(app *apps.ClientApp) error {
	if cfg.w == nil {
		return errors.New("nil progress writer")
	}
	app.Progress = cfg.w
	return nil
}

// ApplyServerApp applies the ProgressCfg to a ServerApp.
func (cfg ProgressCfg) ApplyServerApp(app *apps.ServerApp) error {
	if cfg.w == nil {
		return errors.New("nil progress writer")
	}
	app.Progress = cfg.w
	return nil
}
