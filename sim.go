// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path"
	"sync/atomic"
	"time"
)

// Sim is one independent simulation instance.
//
// Each Sim owns its peripheral state outright; there is no shared or
// global state, so any number of Sims can coexist in one process. A Sim is
// constructed fresh by NewSim and simply discarded when no longer needed;
// it holds no external resources.
//
// A Sim is not safe for concurrent use. All state mutation and all handler
// invocation happen synchronously in the calling goroutine.
type Sim struct {
	// The name of the simulator, used to tag its diagnostic stream.
	//
	// This is not something the user generally needs to be concerned
	// with, but helps tell instances apart in test logs.
	Name string

	// The simulated GPIO ports.
	GPIO *Bank

	// The simulated interrupt controller.
	NVIC *NVIC

	// The simulated analog inputs.
	ADC *ADC

	// The STM32 HAL style surface over GPIO and NVIC.
	HAL *HAL

	faults *faultInjector
	rng    *rand.Rand
	log    *slog.Logger
}

// NewSim constructs a Sim based on the provided options.
//
// The available options are [WithName], [WithSeed], [WithLogger] and
// [WithTraceWriter]. All are optional: an unnamed Sim is assigned a unique
// generated name, an unseeded one takes its seed from the wall clock, and
// without a logger or trace writer the diagnostic stream is discarded.
//
// The Sim starts with all peripherals at their power-on defaults and fault
// injection disabled.
func NewSim(options ...NewSimOption) *Sim {
	b := builder{}
	for _, o := range options {
		o.applySimOption(&b)
	}
	return b.build()
}

// SetFaultInjection enables or disables synthetic failures.
//
// While enabled, roughly 10% of mutating peripheral calls fail with a
// random code from the subsystem's taxonomy instead of changing state.
// The sequence of failures is a pure function of the Sim's seed and the
// sequence of calls made.
func (s *Sim) SetFaultInjection(enable bool) {
	s.faults.setEnabled(enable)
}

// Reset returns every peripheral to its power-on state in one step.
//
// The random source is not rewound; a reset mid-sequence continues the
// same random stream.
func (s *Sim) Reset() {
	s.GPIO.reset()
	s.NVIC.reset()
	s.ADC.reset()
	s.log.Info("simulator reset")
}

// builder contains all the information required to build a Sim.
type builder struct {
	name        string // optional
	seed        int64
	seedSet     bool
	logger      *slog.Logger
	traceWriter io.Writer
}

func (b *builder) build() *Sim {
	if b.name == "" {
		b.name = uniqueName()
	}
	seed := b.seed
	if !b.seedSet {
		seed = time.Now().UnixNano()
	}
	log := b.logger
	if log == nil {
		w := b.traceWriter
		if w == nil {
			w = io.Discard
		}
		log = slog.New(slog.NewTextHandler(w, nil))
	}
	log = log.With("sim", b.name)

	rng := rand.New(rand.NewSource(seed))
	s := &Sim{
		Name:   b.name,
		faults: &faultInjector{rng: rng, log: log.With("sub", "fault")},
		rng:    rng,
		log:    log,
	}
	s.GPIO = newBank(s.faults, rng, log.With("sub", "gpio"))
	s.NVIC = newNVIC(s.faults, log.With("sub", "nvic"))
	s.ADC = newADC(rng, log.With("sub", "adc"))
	s.HAL = &HAL{sim: s, log: log.With("sub", "hal")}
	log.Info("simulator created",
		"ports", MaxPorts, "pins", MaxPins, "irqs", MaxLines, "seed", seed)
	return s
}

var simCounter uint32 = 0

// uniqueName returns a name for the sim that is very likely to be unique,
// using the appname, PID and a monotonic atomic counter.
func uniqueName() string {
	return fmt.Sprintf("%s-p%d-%d", appName(), os.Getpid(), atomic.AddUint32(&simCounter, 1))
}

// appName returns the name of the running executable.
//
// Falls back to "mcusim" if that can't be determined for some reason.
func appName() string {
	str, err := os.Executable()
	if err != nil {
		return "mcusim"
	}
	return path.Base(str)
}
