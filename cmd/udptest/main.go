// Package main is the udptest application entrypoint.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"udptest/internal"
	"udptest/internal/app/apps"
	"udptest/internal/app/cfg"
	"udptest/internal/pkg/client"
	"udptest/internal/pkg/log"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	exitOK        = 0
	exitHandshake = 1
	exitDesync    = 2
	exitFailure   = 3
)

// CLI command definitions.
var (
	logger logrus.FieldLogger = logrus.StandardLogger()

	rootCmd = &cobra.Command{
		Use:   "udptest",
		Short: "A simple UDP network tester.",
		Long: "A simple UDP network tester. Start a server somewhere, and then use the client to connect.\n" +
			"This will continually send packets through the network and stop when an error is detected.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	clientCmd = &cobra.Command{
		Use:   "client host[:port]",
		Short: "Starts a client connecting to the given server.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCmd,
	}

	serverCmd = &cobra.Command{
		Use:   "server [port]",
		Short: "Starts a server on port (default 30000).",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCmd,
	}
)

func newApp(_ context.Context, cmd *cobra.Command, c internal.Config) (apps.App, error) {
	switch cmd.Name() {
	case "client":
		app, err := apps.NewClientApp(
			cfg.HostFromConfig(c),
			cfg.PortFromConfig(c),
			cfg.PacingFromConfig(c),
			cfg.NewSequenceCfg(c.Sequence),
			cfg.NewMetricsCfg(c.MetricsAddr),
			cfg.NewProgressCfg(cmd.OutOrStdout()),
		)
		if err != nil {
			return nil, errors.Wrap(err, "new client app failed")
		}
		return app, nil
	case "server":
		app, err := apps.NewServerApp(
			cfg.HostFromConfig(c),
			cfg.PortFromConfig(c),
			cfg.NewMetricsCfg(c.MetricsAddr),
			cfg.NewProgressCfg(cmd.OutOrStdout()),
		)
		if err != nil {
			return nil, errors.Wrap(err, "new server app failed")
		}
		return app, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd.Name())
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	c, err := internal.LoadConfig(cmd, args)
	if err != nil {
		return errors.Wrap(err, "load config failed")
	}
	log.SetLogger(c.LogLevel, c.LogFormat)
	app, err := newApp(cmd.Context(), cmd, c)
	if err != nil {
		return errors.Wrapf(err, "new %s app failed", cmd.Name())
	}
	return errors.Wrap(app.Run(cmd.Context(), args), "run app failed")
}

// exitCode maps the result of a run to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, client.ErrHandshakeFailed):
		return exitHandshake
	case errors.Is(err, client.ErrSequenceMismatch),
		errors.Is(err, client.ErrRejected),
		errors.Is(err, client.ErrTimeout),
		errors.Is(err, client.ErrUnexpectedReply):
		return exitDesync
	}
	return exitFailure
}

// execute runs the command line and reports the outcome. An interrupt always ends with exitOK.
func execute(ctx context.Context, args []string, stdout io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	err := rootCmd.ExecuteContext(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Exiting...")
		return exitOK
	}
	code := exitCode(err)
	switch code {
	case exitOK:
	case exitHandshake:
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Connection failed!")
		logger.WithError(err).Error("handshake failed")
	case exitDesync:
		fmt.Fprintln(stdout)
		logger.WithError(err).Error("error communicating with server")
	default:
		logger.WithError(err).Error("execute root command failed")
	}
	return code
}

func init() {
	err := internal.RegisterCommandFlags(rootCmd, []*internal.Flag{
		&internal.EnvFlag,
		&internal.LogLevelFlag,
		&internal.LogFormatFlag,
		&internal.PortFlag,
		&internal.MetricsAddrFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(clientCmd, []*internal.Flag{
		&internal.ClientIntervalMSFlag,
		&internal.ClientTimeoutMSFlag,
		&internal.ClientRoundsFlag,
		&internal.ClientSequenceFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(serverCmd, []*internal.Flag{
		&internal.ServerBindFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	rootCmd.AddCommand(
		clientCmd,
		serverCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}
