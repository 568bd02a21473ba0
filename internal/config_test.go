package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, name string, flags ...string) *cobra.Command {
	cmd := &cobra.Command{Use: name}
	require.NoError(t, RegisterCommandFlags(cmd, []*Flag{
		&EnvFlag,
		&LogLevelFlag,
		&LogFormatFlag,
		&PortFlag,
		&MetricsAddrFlag,
		&ServerBindFlag,
		&ClientIntervalMSFlag,
		&ClientTimeoutMSFlag,
		&ClientRoundsFlag,
		&ClientSequenceFlag,
	}))
	require.NoError(t, cmd.ParseFlags(flags))
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig(newCommand(t, "server"), nil)
	require.NoError(t, err)
	require.Equal(t, uint16(DefaultPort), c.Port)
	require.Equal(t, "info", c.LogLevel)
	require.Equal(t, "text", c.LogFormat)
	require.Equal(t, 250*time.Millisecond, c.Interval)
	require.Zero(t, c.Timeout)
	require.Nil(t, c.Sequence)
}

func TestLoadConfigServerPortArgument(t *testing.T) {
	c, err := LoadConfig(newCommand(t, "server", "--env", ""), []string{"31000"})
	require.NoError(t, err)
	require.Equal(t, uint16(31000), c.Port)

	_, err = LoadConfig(newCommand(t, "server", "--env", ""), []string{"port"})
	require.Error(t, err)
}

func TestLoadConfigClient(t *testing.T) {
	cmd := newCommand(t, "client", "--env", "", "--timeout-ms", "500", "--seq", "7", "--rounds", "3")
	c, err := LoadConfig(cmd, []string{"example.com:4000"})
	require.NoError(t, err)
	require.Equal(t, "example.com", c.Host)
	require.Equal(t, uint16(4000), c.Port)
	require.Equal(t, 500*time.Millisecond, c.Timeout)
	require.Equal(t, uint64(3), c.Rounds)
	require.NotNil(t, c.Sequence)
	require.Equal(t, uint64(7), *c.Sequence)

	_, err = LoadConfig(newCommand(t, "client", "--env", ""), nil)
	require.Error(t, err)
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Setenv("UDPTEST_LOG_LEVEL", "debug")
	t.Setenv("UDPTEST_PORT", "30001")

	c, err := LoadConfig(newCommand(t, "server", "--env", ""), nil)
	require.NoError(t, err)
	require.Equal(t, "debug", c.LogLevel)
	require.Equal(t, uint16(30001), c.Port)

	c, err = LoadConfig(newCommand(t, "server", "--env", "", "--log-level", "warn"), nil)
	require.NoError(t, err)
	require.Equal(t, "warn", c.LogLevel)
}

func TestLoadConfigEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "udptest.env")
	require.NoError(t, os.WriteFile(file, []byte("UDPTEST_INTERVAL_MS=10\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("UDPTEST_INTERVAL_MS") })

	c, err := LoadConfig(newCommand(t, "client", "--env", file), []string{"localhost"})
	require.NoError(t, err)
	require.Equal(t, 10*time.Millisecond, c.Interval)

	_, err = LoadConfig(newCommand(t, "client", "--env", file+".missing"), []string{"localhost"})
	require.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	for _, flags := range [][]string{
		{"--log-level", "loud"},
		{"--log-format", "xml"},
		{"--metrics-addr", "nope"},
		{"--interval-ms", "-1"},
		{"--seq", "-1"},
	} {
		_, err := LoadConfig(newCommand(t, "client", append([]string{"--env", ""}, flags...)...), []string{"localhost"})
		require.Error(t, err, "%v", flags)
	}
}

func TestParseTarget(t *testing.T) {
	host, port, err := ParseTarget("localhost", 30000)
	require.NoError(t, err)
	require.Equal(t, "localhost", host)
	require.Equal(t, uint16(30000), port)

	host, port, err = ParseTarget("10.0.0.1:9", 30000)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", host)
	require.Equal(t, uint16(9), port)

	host, port, err = ParseTarget("[::1]:9", 30000)
	require.NoError(t, err)
	require.Equal(t, "::1", host)
	require.Equal(t, uint16(9), port)

	_, _, err = ParseTarget("host:99999", 30000)
	require.Error(t, err)
	_, _, err = ParseTarget(":9", 30000)
	require.Error(t, err)
	_, _, err = ParseTarget("", 30000)
	require.Error(t, err)
}
