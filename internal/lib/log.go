// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// newLogger returns a human readable logger writing to out.
// Every line carries a short id for the run.
func newLogger(out io.Writer, verbose bool) zerolog.Logger {
	w := zerolog.ConsoleWriter{
		Out:          out,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	runID := uuid.NewString()[:8]
	return zerolog.New(w).Level(level).With().Str("run", runID).Logger()
}
