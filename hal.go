// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

import (
	"log/slog"

	"github.com/pkg/errors"
)

// PinState is the level of a pin as seen through the HAL.
type PinState int

const (
	PinReset PinState = iota
	PinSet
)

func (s PinState) String() string {
	if s == PinSet {
		return "set"
	}
	return "reset"
}

// STM32 HAL compatible mode encodings for PinConfig.Mode.
//
// The low byte selects the base function, bit 4 selects open-drain,
// bit 28 marks interrupt modes and bits 20-21 the trigger edges.
const (
	HALModeInput           uint32 = 0x00000000
	HALModeOutputPP        uint32 = 0x00000001
	HALModeOutputOD        uint32 = 0x00000011
	HALModeAFPP            uint32 = 0x00000002
	HALModeAFOD            uint32 = 0x00000012
	HALModeAnalog          uint32 = 0x00000003
	HALModeITRising        uint32 = 0x10110000
	HALModeITFalling       uint32 = 0x10210000
	HALModeITRisingFalling uint32 = 0x10310000

	halModeITFlag    uint32 = 0x10000000
	halModeEdgeMask  uint32 = 0x00300000
	halModeRisingBit uint32 = 0x00100000
	halModeODBit     uint32 = 0x00000010
)

// HAL compatible pull encodings for PinConfig.Pull.
const (
	HALNoPull uint32 = iota
	HALPullUp
	HALPullDown
)

// HAL compatible speed encodings for PinConfig.Speed.
const (
	HALSpeedLow uint32 = iota
	HALSpeedMedium
	HALSpeedHigh
	HALSpeedVeryHigh
)

// PinConfig is the vendor-neutral pin descriptor accepted by InitPin,
// mirroring the fields of the STM32 HAL GPIO_InitTypeDef.
//
// Handler is only consulted for interrupt modes and may be nil.
type PinConfig struct {
	Pin       int
	Mode      uint32
	Pull      uint32
	Speed     uint32
	Alternate int
	Handler   PinHandler
}

// HAL routes STM32 HAL shaped calls onto the simulator's GPIO bank and
// interrupt controller, hiding whether a requested mode is a plain GPIO
// mode or an interrupt mode.
type HAL struct {
	sim *Sim
	log *slog.Logger
}

// halPinMode maps a HAL mode bitmask to the bank's mode and output type.
func halPinMode(halMode uint32) (PinMode, OutputType) {
	otype := PushPull
	if halMode&halModeODBit != 0 {
		otype = OpenDrain
	}
	switch halMode & 0x0f {
	case 0x01:
		return ModeOutput, otype
	case 0x02:
		return ModeAlternate, otype
	case 0x03:
		return ModeAnalog, otype
	default:
		return ModeInput, otype
	}
}

// halInterruptMode maps the edge bits of a HAL interrupt mode to the
// bank's trigger mode.
func halInterruptMode(halMode uint32) PinMode {
	switch halMode & halModeEdgeMask {
	case halModeRisingBit:
		return ModeITRising
	case halModeEdgeMask:
		return ModeITBoth
	default:
		return ModeITFalling
	}
}

// InitPin applies the descriptor to the given port.
//
// The port clock is enabled, then either the interrupt is armed (for
// interrupt modes) or the pin is configured, with the alternate function
// applied when an AF mode was requested. InitPin succeeds only if every
// underlying step succeeds. On failure no rollback is attempted: steps
// already applied remain in place and the caller must treat the pin's
// configuration as indeterminate.
func (h *HAL) InitPin(port int, cfg PinConfig) error {
	h.log.Info("init pin", "port", port, "pin", cfg.Pin, "mode", cfg.Mode)
	if err := h.sim.GPIO.EnableClock(port); err != nil {
		return errors.Wrapf(err, "enable clock for port %d", port)
	}
	if cfg.Mode&halModeITFlag != 0 {
		mode := halInterruptMode(cfg.Mode)
		if err := h.sim.GPIO.ArmInterrupt(port, cfg.Pin, mode, cfg.Handler); err != nil {
			return errors.Wrapf(err, "arm interrupt for pin %d on port %d", cfg.Pin, port)
		}
		return nil
	}
	mode, otype := halPinMode(cfg.Mode)
	if err := h.sim.GPIO.ConfigurePin(port, cfg.Pin, mode, otype, Speed(cfg.Speed), Pull(cfg.Pull)); err != nil {
		return errors.Wrapf(err, "configure pin %d on port %d", cfg.Pin, port)
	}
	if mode == ModeAlternate {
		if err := h.sim.GPIO.SetAltFunc(port, cfg.Pin, cfg.Alternate); err != nil {
			return errors.Wrapf(err, "set alternate function for pin %d on port %d", cfg.Pin, port)
		}
	}
	return nil
}

// ReadPin returns the pin's level as a PinState.
func (h *HAL) ReadPin(port, pin int) (PinState, error) {
	v, err := h.sim.GPIO.ReadPin(port, pin)
	if err != nil {
		return PinReset, errors.Wrapf(err, "read pin %d on port %d", pin, port)
	}
	if v != 0 {
		return PinSet, nil
	}
	return PinReset, nil
}

// WritePin drives the pin to the given state.
func (h *HAL) WritePin(port, pin int, state PinState) error {
	v := 0
	if state == PinSet {
		v = 1
	}
	return h.sim.GPIO.WritePin(port, pin, v)
}

// TogglePin flips the pin's level.
func (h *HAL) TogglePin(port, pin int) error {
	return h.sim.GPIO.TogglePin(port, pin)
}

// EnableIRQ enables the interrupt line.
func (h *HAL) EnableIRQ(line int) error {
	return h.sim.NVIC.Enable(line)
}

// DisableIRQ disables the interrupt line.
func (h *HAL) DisableIRQ(line int) error {
	return h.sim.NVIC.Disable(line)
}

// SetIRQPriority assigns the line's priority from the HAL's preemption and
// sub priority pair, using the usual 4-bit grouping: bits 3-2 carry the
// preemption priority and bits 1-0 the sub priority. The result is clamped
// to MaxPriority.
func (h *HAL) SetIRQPriority(line, preempt, sub int) error {
	priority := preempt<<2 | sub&0x3
	if priority > MaxPriority {
		priority = MaxPriority
	}
	if priority < 0 {
		priority = 0
	}
	return h.sim.NVIC.SetPriority(line, priority)
}
