// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

import (
	"log/slog"
	"math/rand"
)

// faultInjector is the shared synthetic-failure policy consulted by the
// peripheral models before they mutate state. It never owns peripheral
// state itself.
//
// The random source is the one injected into the Sim, so a fixed seed
// reproduces the exact same failure sequence across runs.
type faultInjector struct {
	rng     *rand.Rand
	enabled bool
	log     *slog.Logger
}

// inject reports whether the current mutating call must fail.
//
// When enabled, each eligible call fails with 1-in-10 probability. On
// failure the returned index selects, uniformly, one of the caller's
// numCodes non-zero error codes.
func (f *faultInjector) inject(numCodes int) (int, bool) {
	if !f.enabled {
		return 0, false
	}
	if f.rng.Intn(10) != 0 {
		return 0, false
	}
	return f.rng.Intn(numCodes), true
}

func (f *faultInjector) setEnabled(enable bool) {
	f.enabled = enable
	f.log.Info("fault injection", "enabled", enable)
}
