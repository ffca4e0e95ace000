// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

// Simpleton wraps a Sim for tests that only need plain GPIO on a single
// port. It operates exclusively on port A, whose clock is enabled at
// construction, and hides the port index from every call.
type Simpleton struct {
	Sim
}

// NewSimpleton constructs a Simpleton from the provided options.
//
// The options are the same as for NewSim.
func NewSimpleton(options ...NewSimOption) *Simpleton {
	s := NewSim(options...)
	// cannot fail: port 0 is valid and injection is off during construction
	s.GPIO.EnableClock(0)
	return &Simpleton{*s}
}

// ConfigureOutput configures the pin as a push-pull output.
func (s *Simpleton) ConfigureOutput(pin int) error {
	return s.GPIO.ConfigurePin(0, pin, ModeOutput, PushPull, SpeedLow, PullNone)
}

// ConfigureInput configures the pin as an input with the given pull.
func (s *Simpleton) ConfigureInput(pin int, pull Pull) error {
	return s.GPIO.ConfigurePin(0, pin, ModeInput, PushPull, SpeedLow, pull)
}

// Write drives the pin to the given level.
func (s *Simpleton) Write(pin, value int) error {
	return s.GPIO.WritePin(0, pin, value)
}

// Read returns the pin's current level.
func (s *Simpleton) Read(pin int) (int, error) {
	return s.GPIO.ReadPin(0, pin)
}

// Toggle flips the pin's level.
func (s *Simpleton) Toggle(pin int) error {
	return s.GPIO.TogglePin(0, pin)
}
