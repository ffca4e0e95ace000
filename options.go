// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

import (
	"io"
	"log/slog"
)

// NewSimOption defines the interface required to provide an option to NewSim.
type NewSimOption interface {
	applySimOption(*builder)
}

// NameOption defines the name for a Sim.
type NameOption string

// WithName returns an option that defines the name of a Sim.
//
// The name only appears in diagnostics; if none is provided a unique name
// is generated.
func WithName(name string) NameOption {
	return NameOption(name)
}

func (o NameOption) applySimOption(b *builder) {
	b.name = string(o)
}

// SeedOption defines the seed for a Sim's random source.
type SeedOption int64

// WithSeed returns an option that seeds the simulator's random source.
//
// The one source feeds floating input reads, ADC samples and fault
// injection, so a fixed seed makes a given call sequence fully
// reproducible. Without this option the seed is taken from the wall clock.
func WithSeed(seed int64) SeedOption {
	return SeedOption(seed)
}

func (o SeedOption) applySimOption(b *builder) {
	b.seed = int64(o)
	b.seedSet = true
}

// LoggerOption defines the logger receiving a Sim's diagnostic stream.
type LoggerOption struct {
	logger *slog.Logger
}

// WithLogger returns an option that routes the simulator's diagnostic
// stream to the given logger.
//
// Takes precedence over WithTraceWriter.
func WithLogger(logger *slog.Logger) LoggerOption {
	return LoggerOption{logger}
}

func (o LoggerOption) applySimOption(b *builder) {
	b.logger = o.logger
}

// TraceWriterOption defines the writer receiving a Sim's diagnostic stream.
type TraceWriterOption struct {
	w io.Writer
}

// WithTraceWriter returns an option that writes the simulator's diagnostic
// stream, as slog text lines, to the given writer.
//
// The stream is a human-readable trace of every state transition, intended
// for test-log inspection; there is no stability guarantee on the exact
// wording.
func WithTraceWriter(w io.Writer) TraceWriterOption {
	return TraceWriterOption{w}
}

func (o TraceWriterOption) applySimOption(b *builder) {
	b.traceWriter = o.w
}
