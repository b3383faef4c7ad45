package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/ntcstat/pkg/config"
	"github.com/itohio/ntcstat/pkg/control"
	"github.com/itohio/ntcstat/pkg/logger"
)

func TestStatusText(t *testing.T) {
	snap := control.Snapshot{
		Setpoint: 21,
		Samples: [control.Channels]control.ResolvedSample{
			{Celsius: 25, Ohms: 10000, Valid: true},
			{Celsius: -30, Ohms: 1e9, Clamped: true, Valid: true},
		},
	}
	assert.Equal(t, "Setpoint 21 °C   T1 25 °C (10000 Ω)   T2 -30 °C (out of range)   ticks 7", statusText(snap, 7))

	assert.Equal(t, "Setpoint -9 °C   T1 --   T2 --   ticks 0", statusText(control.Snapshot{Setpoint: -9}, 0))
}

func TestApplyLogLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.NewWriter(logger.InfoLevel, &buf)
	require.NoError(t, err)
	cfg := config.Default()

	log.Debugw("hidden")
	require.NoError(t, applyLogLevel(log, cfg, logger.DebugLevel))
	assert.Equal(t, logger.DebugLevel, cfg.Log.Level)
	log.Debugw("shown")
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Error(t, applyLogLevel(log, cfg, "loud"))
	assert.Equal(t, logger.DebugLevel, cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}
