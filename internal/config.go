package internal

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"udptest/internal/pkg/validate"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// DefaultPort is the server port used when none is given.
const DefaultPort = 30000

// Config is the complete runtime configuration. It is built once by LoadConfig
// and only read afterwards.
type Config struct {
	LogLevel    string `validate:"oneof=trace debug info warn error"`
	LogFormat   string `validate:"oneof=text json"`
	MetricsAddr string `validate:"omitempty,hostname_port"`

	Host string `validate:"omitempty,hostname_rfc1123|ip"`
	Port uint16

	Interval time.Duration `validate:"gte=0"`
	Timeout  time.Duration `validate:"gte=0"`
	Rounds   uint64
	Sequence *uint64
}

// LoadConfig reads the dotenv file, the environment and the flags of cmd, then applies
// the positional arguments: "[port]" for the server and "host[:port]" for the client.
func LoadConfig(cmd *cobra.Command, args []string) (Config, error) {
	if err := loadEnvFile(cmd); err != nil {
		return Config{}, err
	}
	var err error
	c := Config{
		LogLevel:    strings.ToLower(LogLevelFlag.Value(cmd)),
		LogFormat:   strings.ToLower(LogFormatFlag.Value(cmd)),
		MetricsAddr: MetricsAddrFlag.Value(cmd),
		Host:        ServerBindFlag.Value(cmd),
	}
	if c.Port, err = parsePort(PortFlag.Value(cmd)); err != nil {
		return Config{}, errors.Wrap(err, "parse port flag failed")
	}
	if c.Interval, err = parseMillis(ClientIntervalMSFlag.Value(cmd)); err != nil {
		return Config{}, errors.Wrap(err, "parse interval flag failed")
	}
	if c.Timeout, err = parseMillis(ClientTimeoutMSFlag.Value(cmd)); err != nil {
		return Config{}, errors.Wrap(err, "parse timeout flag failed")
	}
	if c.Rounds, err = strconv.ParseUint(ClientRoundsFlag.Value(cmd), 10, 64); err != nil {
		return Config{}, errors.Wrap(err, "parse rounds flag failed")
	}
	if v := ClientSequenceFlag.Value(cmd); v != "" {
		seq, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, errors.Wrap(err, "parse seq flag failed")
		}
		c.Sequence = &seq
	}

	switch cmd.Name() {
	case "server":
		if len(args) > 0 {
			if c.Port, err = parsePort(args[0]); err != nil {
				return Config{}, errors.Wrap(err, "parse port argument failed")
			}
		}
	case "client":
		if len(args) != 1 {
			return Config{}, errors.New("client needs exactly one host[:port] argument")
		}
		if c.Host, c.Port, err = ParseTarget(args[0], c.Port); err != nil {
			return Config{}, errors.Wrap(err, "parse target argument failed")
		}
	}

	if err := validate.Validate().Struct(c); err != nil {
		return Config{}, errors.Wrap(err, "validate config failed")
	}
	return c, nil
}

// ParseTarget splits "host[:port]", falling back to defaultPort.
func ParseTarget(target string, defaultPort uint16) (string, uint16, error) {
	if target == "" {
		return "", 0, errors.New("empty target")
	}
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// no port, or a bare IPv6 address
		return strings.Trim(target, "[]"), defaultPort, nil
	}
	port, err := parsePort(portStr)
	if err != nil {
		return "", 0, err
	}
	if host == "" {
		return "", 0, errors.Errorf("missing host in %q", target)
	}
	return host, port, nil
}

func loadEnvFile(cmd *cobra.Command) error {
	file := EnvFlag.Value(cmd)
	if file == "" {
		return nil
	}
	if _, err := os.Stat(file); err != nil {
		if os.IsNotExist(err) && !EnvFlag.Changed(cmd) {
			return nil
		}
		return errors.Wrapf(err, "stat env file %s failed", file)
	}
	return errors.Wrapf(godotenv.Load(file), "load env file %s failed", file)
}

func parsePort(s string) (uint16, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid port %q", s)
	}
	return uint16(port), nil
}

func parseMillis(s string) (time.Duration, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid milliseconds %q", s)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
