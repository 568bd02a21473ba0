// Package telemetry exposes Prometheus metrics for the client and the server.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

var (
	Registry = prometheus.NewRegistry()

	DatagramsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "udptest",
			Name:      "datagrams_total",
			Help:      "Datagrams handled by the server, by message kind.",
		},
		[]string{"kind"},
	)

	ProtocolErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "udptest",
			Name:      "protocol_errors_total",
			Help:      "Datagrams the server could not accept, by reason.",
		},
		[]string{"reason"},
	)

	MismatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "udptest",
			Name:      "checksum_mismatches_total",
			Help:      "CHECK messages whose digest did not match the peer's sequence.",
		},
	)

	Peers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "udptest",
			Name:      "peers",
			Help:      "Peers the server holds a session for.",
		},
	)

	RoundsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "udptest",
			Name:      "client_rounds_total",
			Help:      "Successful CHECK/NEXT rounds completed by the client.",
		},
	)

	RoundDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "udptest",
			Name:      "client_round_duration_seconds",
			Help:      "Round-trip time of a CHECK/NEXT exchange.",
			// 100us .. ~3s
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		},
	)
)

// Protocol error reasons.
const (
	ReasonMalformed      = "malformed"
	ReasonUnknownPeer    = "unknown_peer"
	ReasonUnexpectedKind = "unexpected_kind"
)

func init() {
	Registry.MustRegister(
		DatagramsTotal,
		ProtocolErrorsTotal,
		MismatchesTotal,
		Peers,
		RoundsTotal,
		RoundDuration,
	)
}

// MetricsHandler exposes the registry in the Prometheus text format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("shutdown metrics server failed")
		}
	}()
	logger.WithField("addr", addr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "serve metrics on %s failed", addr)
	}
	return nil
}
