// Package internal holds the command-line flags and the configuration built from them.
package internal

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Flag describes a command-line flag that can also be set from the environment.
type Flag struct {
	Name    string
	Env     string
	Default string
	Usage   string
}

// Flags shared by every command.
var (
	EnvFlag = Flag{
		Name:    "env",
		Env:     "UDPTEST_ENV_FILE",
		Default: ".env",
		Usage:   "dotenv file to read settings from",
	}
	LogLevelFlag = Flag{
		Name:    "log-level",
		Env:     "UDPTEST_LOG_LEVEL",
		Default: "info",
		Usage:   "log level: trace, debug, info, warn or error",
	}
	LogFormatFlag = Flag{
		Name:    "log-format",
		Env:     "UDPTEST_LOG_FORMAT",
		Default: "text",
		Usage:   "log format: text or json",
	}
	PortFlag = Flag{
		Name:    "port",
		Env:     "UDPTEST_PORT",
		Default: "30000",
		Usage:   "server UDP port",
	}
	MetricsAddrFlag = Flag{
		Name:  "metrics-addr",
		Env:   "UDPTEST_METRICS_ADDR",
		Usage: "host:port to serve Prometheus metrics on, disabled when empty",
	}
)

// Server flags.
var (
	ServerBindFlag = Flag{
		Name:  "bind",
		Env:   "UDPTEST_BIND",
		Usage: "local address to listen on, all interfaces when empty",
	}
)

// Client flags.
var (
	ClientIntervalMSFlag = Flag{
		Name:    "interval-ms",
		Env:     "UDPTEST_INTERVAL_MS",
		Default: "250",
		Usage:   "pause between rounds in milliseconds",
	}
	ClientTimeoutMSFlag = Flag{
		Name:    "timeout-ms",
		Env:     "UDPTEST_TIMEOUT_MS",
		Default: "0",
		Usage:   "reply timeout in milliseconds, 0 waits forever",
	}
	ClientRoundsFlag = Flag{
		Name:    "rounds",
		Env:     "UDPTEST_ROUNDS",
		Default: "0",
		Usage:   "stop after this many successful rounds, 0 runs until the first error",
	}
	ClientSequenceFlag = Flag{
		Name:  "seq",
		Env:   "UDPTEST_SEQ",
		Usage: "starting sequence number, random when empty",
	}
)

// RegisterCommandFlags adds flags to cmd as persistent flags, so subcommands inherit them.
func RegisterCommandFlags(cmd *cobra.Command, flags []*Flag) error {
	for _, f := range flags {
		if f.Name == "" {
			return errors.New("flag without name")
		}
		if cmd.PersistentFlags().Lookup(f.Name) != nil {
			return errors.Errorf("flag %s already registered on %s", f.Name, cmd.Name())
		}
		usage := f.Usage
		if f.Env != "" {
			usage += " [$" + f.Env + "]"
		}
		cmd.PersistentFlags().String(f.Name, f.Default, usage)
	}
	return nil
}

// Value resolves the flag for cmd: an explicit flag wins over the environment,
// which wins over the default.
func (f *Flag) Value(cmd *cobra.Command) string {
	fl := cmd.Flags().Lookup(f.Name)
	if fl != nil && fl.Changed {
		return fl.Value.String()
	}
	if f.Env != "" {
		if v, ok := os.LookupEnv(f.Env); ok {
			return v
		}
	}
	return f.Default
}

// Changed reports whether the flag was given explicitly on the command line.
func (f *Flag) Changed(cmd *cobra.Command) bool {
	fl := cmd.Flags().Lookup(f.Name)
	return fl != nil && fl.Changed
}
