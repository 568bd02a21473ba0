package cfg

import (
	"udptest/internal"
	"udptest/internal/app/apps"
)

// HostCfg is the server host for a client, or the bind address for a server.
type HostCfg struct {
	host string
}

// NewHostCfg creates a new HostCfg.
func NewHostCfg(host string) *HostCfg {
	return &HostCfg{
		host: host,
	}
}

// HostFromConfig creates a new HostCfg from the loaded configuration.
func HostFromConfig(c internal.Config) *HostCfg {
	return NewHostCfg(c.Host)
}

// ApplyClientApp applies the HostCfg to a ClientApp. An empty host keeps the default.
func (cfg HostCfg) ApplyClientApp(app *apps.ClientApp) error {
	if cfg.host != "" {
		app.Host = cfg.host
	}
	return nil
}

// ApplyServerApp applies the HostCfg to a ServerApp.
func (cfg HostCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Bind = cfg.host
	return nil
}
