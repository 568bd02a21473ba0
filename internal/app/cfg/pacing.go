package cfg

import (
	"time"

	"udptest/internal"
	"udptest/internal/app/apps"

	"github.com/pkg/errors"
)

// PacingCfg controls how the client paces and bounds its rounds.
type PacingCfg struct {
	interval time.Duration
	timeout  time.Duration
	rounds   uint64
}

// NewPacingCfg creates a new PacingCfg.
func NewPacingCfg(interval, timeout time.Duration, rounds uint64) *PacingCfg {
	return &PacingCfg{
		interval: interval,
		timeout:  timeout,
		rounds:   rounds,
	}
}

// PacingFromConfig creates a new PacingCfg from the loaded configuration.
func PacingFromConfig(c internal.Config) *PacingCfg {
	return NewPacingCfg(c.Interval, c.Timeout, c.Rounds)
}

// ApplyClientApp applies the PacingCfg to a ClientApp.
func (cfg PacingCfg) ApplyClientApp(app *apps.ClientApp) error {
	if cfg.interval < 0 {
		return errors.Errorf("negative interval %s", cfg.interval)
	}
	app.Interval = cfg.interval
	app.Timeout = cfg.timeout
	app.Rounds = cfg.rounds
	return nil
}

// SequenceCfg fixes the client's starting sequence number.
type SequenceCfg struct {
	seq *uint64
}

// NewSequenceCfg creates a new SequenceCfg. A nil seq keeps the random default.
func NewSequenceCfg(seq *uint64) *SequenceCfg {
	return &SequenceCfg{
		seq: seq,
	}
}

// ApplyClientApp applies the SequenceCfg to a ClientApp.
func (cfg SequenceCfg) ApplyClientApp(app *apps.ClientApp) error {
	if cfg.seq != nil {
		seq := *cfg.seq
		app.Sequence = &seq
	}
	return nil
}
