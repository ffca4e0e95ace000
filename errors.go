// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

// GPIOError identifies a GPIO bank failure.
//
// The zero value means no error. Codes double as the values held in the
// bank's last-error register, so an injected fault surfaces through the same
// taxonomy as a genuine precondition violation.
type GPIOError uint8

const (
	GPIOErrNone GPIOError = iota

	// Port index outside 0..MaxPorts-1.
	GPIOErrInvalidPort

	// Pin index outside 0..MaxPins-1.
	GPIOErrInvalidPin

	// Pin operation attempted before the port clock was enabled.
	GPIOErrClockNotEnabled

	// Interrupt arming rejected, e.g. a non-interrupt mode was given.
	GPIOErrInterruptConfig

	// Alternate function selection on an invalid port/pin.
	GPIOErrPinMux
)

// numGPIOFaultCodes is the size of the pool injected faults draw from
// (every code except GPIOErrNone).
const numGPIOFaultCodes = 5

func (e GPIOError) Error() string {
	switch e {
	case GPIOErrNone:
		return "no error"
	case GPIOErrInvalidPort:
		return "invalid port"
	case GPIOErrInvalidPin:
		return "invalid pin"
	case GPIOErrClockNotEnabled:
		return "port clock not enabled"
	case GPIOErrInterruptConfig:
		return "interrupt configuration error"
	case GPIOErrPinMux:
		return "pin mux error"
	}
	return "unknown gpio error"
}

// NVICError identifies an interrupt controller failure.
//
// The zero value means no error.
type NVICError uint8

const (
	NVICErrNone NVICError = iota

	// Line index outside 0..MaxLines-1.
	NVICErrInvalidLine

	// Priority greater than MaxPriority.
	NVICErrInvalidPriority

	// DispatchAll hit its safety bound with lines still pending.
	NVICErrTooManyPending
)

// numNVICFaultCodes is the size of the pool injected faults draw from.
// TooManyPending is never injected, it only arises from dispatch.
const numNVICFaultCodes = 2

func (e NVICError) Error() string {
	switch e {
	case NVICErrNone:
		return "no error"
	case NVICErrInvalidLine:
		return "invalid irq line"
	case NVICErrInvalidPriority:
		return "invalid priority"
	case NVICErrTooManyPending:
		return "too many pending interrupts"
	}
	return "unknown nvic error"
}
