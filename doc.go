// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

/*
Package mcusim is a library for simulating the GPIO bank and nested-priority
interrupt controller of an STM32-class microcontroller, for testing firmware
logic without physical silicon.

A simulator ([Sim]) owns a [Bank] of GPIO ports, an [NVIC] interrupt line
table and an [ADC], all fixed-capacity and zero-initialized to the safe
power-on defaults real hardware presents (pins as floating inputs, interrupt
lines disabled at the lowest priority).

The models enforce hardware-like preconditions: pin operations require the
port clock to be enabled, writes are only meaningful on output pins, and
reads on input pins re-derive the level from the pull configuration.
Violations are reported as typed error codes ([GPIOError], [NVICError]),
never as panics.

Test harnesses advance the simulated hardware explicitly. [Bank.SimulateEdge]
raises an edge on an armed pin and invokes its handler synchronously.
[NVIC.DispatchOne] and [NVIC.DispatchAll] service pending interrupt lines in
strict priority order, ties broken by line number, invoking each registered
handler synchronously in the calling goroutine. There is no background
execution, and a Sim must not be shared between goroutines without external
serialization.

The [HAL] wraps both models behind an STM32 HAL style surface, so firmware
under test written against HAL_GPIO_Init-shaped calls can be exercised
against the simulator unchanged.

For negative-path testing the simulator can inject synthetic faults into
roughly 10% of mutating calls, drawn from an explicitly seeded random source
so failure sequences are reproducible.

# Example Usage

Create a simulator, drive a pin and read it back:

	s := mcusim.NewSim(mcusim.WithSeed(1))
	s.GPIO.EnableClock(0)
	s.GPIO.ConfigurePin(0, 5, mcusim.ModeOutput, mcusim.PushPull, mcusim.SpeedHigh, mcusim.PullNone)
	s.GPIO.WritePin(0, 5, 1)
	v, err := s.GPIO.ReadPin(0, 5)

Service interrupts in priority order:

	s.NVIC.Enable(23)
	s.NVIC.SetPriority(23, 1)
	s.NVIC.SetHandler(23, mcusim.IRQHandlerFunc(onButton), "EXTI9_5")
	s.NVIC.SetPending(23)
	line, ok := s.NVIC.DispatchOne()

For tests that only need plain GPIO on a single port, the [Simpleton]
provides a slightly simpler interface.
*/
package mcusim
