// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
)

const (
	// MaxPorts is the number of GPIO ports, named "A" through "I".
	MaxPorts = 9

	// MaxPins is the number of pins per port.
	MaxPins = 16
)

// PinMode selects the function of a pin.
type PinMode uint8

const (
	// Pin reads its level from the outside world.
	ModeInput PinMode = iota

	// Pin drives its level.
	ModeOutput

	// Pin is routed to a peripheral selected by the alternate function.
	ModeAlternate

	// Pin is an analog input.
	ModeAnalog

	// Pin triggers on rising edges.
	ModeITRising

	// Pin triggers on falling edges.
	ModeITFalling

	// Pin triggers on both edges.
	ModeITBoth
)

// interrupt reports whether the mode is one of the edge-triggered variants.
func (m PinMode) interrupt() bool {
	return m == ModeITRising || m == ModeITFalling || m == ModeITBoth
}

var pinModeNames = [...]string{
	"input", "output", "alternate", "analog",
	"it-rising", "it-falling", "it-both",
}

func (m PinMode) String() string {
	if int(m) < len(pinModeNames) {
		return pinModeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// OutputType selects the drive characteristic of an output pin.
type OutputType uint8

const (
	PushPull OutputType = iota
	OpenDrain
)

func (t OutputType) String() string {
	if t == OpenDrain {
		return "open-drain"
	}
	return "push-pull"
}

// Speed selects the slew rate of an output pin.
//
// The simulation is not cycle accurate, so speed is configuration state
// only, but it is carried and reported so firmware can be checked for
// setting it correctly.
type Speed uint8

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedFast
	SpeedHigh
)

var speedNames = [...]string{"low", "medium", "fast", "high"}

func (s Speed) String() string {
	if int(s) < len(speedNames) {
		return speedNames[s]
	}
	return fmt.Sprintf("speed(%d)", uint8(s))
}

// Pull selects the bias applied to an input pin.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

var pullNames = [...]string{"none", "pull-up", "pull-down"}

func (p Pull) String() string {
	if int(p) < len(pullNames) {
		return pullNames[p]
	}
	return fmt.Sprintf("pull(%d)", uint8(p))
}

// Edge identifies the direction of a simulated signal transition.
type Edge uint8

const (
	EdgeFalling Edge = iota
	EdgeRising
)

func (e Edge) String() string {
	if e == EdgeRising {
		return "rising"
	}
	return "falling"
}

// PinHandler receives the simulated edge events of an armed pin.
//
// Handlers are invoked synchronously from SimulateEdge.
type PinHandler interface {
	HandleEdge(port, pin int)
}

// PinHandlerFunc adapts an ordinary function to a PinHandler.
type PinHandlerFunc func(port, pin int)

func (f PinHandlerFunc) HandleEdge(port, pin int) {
	f(port, pin)
}

// Pin is one addressable bit of I/O state with its own mode and electrical
// configuration.
type Pin struct {
	Mode       PinMode
	OutputType OutputType
	Speed      Speed
	Pull       Pull
	AltFunc    int

	// The current logical level, 0 or 1.
	Value int

	armed   bool
	handler PinHandler
}

// Armed reports whether the pin has been armed for edge interrupts.
func (p Pin) Armed() bool {
	return p.armed
}

// port is a named group of pins sharing one clock-enable gate.
type port struct {
	pins         [MaxPins]Pin
	clockEnabled bool
	name         string
}

// Bank models the GPIO ports of the simulated device.
//
// All state lives in a fixed-capacity table owned by the Bank; pins are
// never created or destroyed, only reconfigured.
type Bank struct {
	ports [MaxPorts]port

	faults  *faultInjector
	rng     *rand.Rand
	log     *slog.Logger
	lastErr GPIOError
}

func newBank(faults *faultInjector, rng *rand.Rand, log *slog.Logger) *Bank {
	b := &Bank{faults: faults, rng: rng, log: log}
	b.reset()
	return b
}

// reset returns every port to its power-on state: clock gated, all pins
// floating inputs driven low.
func (b *Bank) reset() {
	for i := range b.ports {
		b.ports[i] = port{name: string(rune('A' + i))}
	}
	b.lastErr = GPIOErrNone
}

// LastError returns the bank's last recorded error code.
//
// It holds the code of the most recent failure, injected or genuine, and is
// cleared by the next successful operation.
func (b *Bank) LastError() GPIOError {
	return b.lastErr
}

// PortName returns the display name of the port, "A" for port 0 through "I".
func (b *Bank) PortName(port int) string {
	if port < 0 || port >= MaxPorts {
		return "?"
	}
	return b.ports[port].name
}

// ClockEnabled reports whether the port's clock gate is open.
func (b *Bank) ClockEnabled(port int) bool {
	if port < 0 || port >= MaxPorts {
		return false
	}
	return b.ports[port].clockEnabled
}

// Pin returns a copy of the pin's current state, for inspection by tests.
func (b *Bank) Pin(port, pin int) (Pin, error) {
	if port < 0 || port >= MaxPorts {
		return Pin{}, GPIOErrInvalidPort
	}
	if pin < 0 || pin >= MaxPins {
		return Pin{}, GPIOErrInvalidPin
	}
	return b.ports[port].pins[pin], nil
}

// fail records code in the last-error register and returns it.
func (b *Bank) fail(code GPIOError) error {
	b.lastErr = code
	b.log.Error("operation failed", "err", code.Error())
	return code
}

// injectFault consults the shared fault policy. The returned error is nil
// unless a synthetic failure was selected for this call, in which case the
// chosen code is also recorded in the last-error register.
func (b *Bank) injectFault(op string) error {
	idx, ok := b.faults.inject(numGPIOFaultCodes)
	if !ok {
		return nil
	}
	code := GPIOError(idx + 1)
	b.lastErr = code
	b.log.Warn("fault injected", "op", op, "err", code.Error())
	return code
}

// EnableClock opens the clock gate for the port.
//
// All pin operations on the port require the clock to be enabled first.
// Enabling an already enabled clock is a no-op.
func (b *Bank) EnableClock(port int) error {
	if port < 0 || port >= MaxPorts {
		return b.fail(GPIOErrInvalidPort)
	}
	if err := b.injectFault("EnableClock"); err != nil {
		return err
	}
	b.ports[port].clockEnabled = true
	b.log.Info("clock enabled", "port", b.ports[port].name)
	b.lastErr = GPIOErrNone
	return nil
}

// ConfigurePin overwrites the pin's configuration.
//
// The port clock must be enabled. On success all four configuration fields
// are applied together; on any failure none are.
func (b *Bank) ConfigurePin(portNum, pin int, mode PinMode, otype OutputType, speed Speed, pull Pull) error {
	if portNum < 0 || portNum >= MaxPorts {
		return b.fail(GPIOErrInvalidPort)
	}
	if pin < 0 || pin >= MaxPins {
		return b.fail(GPIOErrInvalidPin)
	}
	p := &b.ports[portNum]
	if !p.clockEnabled {
		return b.fail(GPIOErrClockNotEnabled)
	}
	if err := b.injectFault("ConfigurePin"); err != nil {
		return err
	}
	n := &p.pins[pin]
	n.Mode = mode
	n.OutputType = otype
	n.Speed = speed
	n.Pull = pull
	b.log.Info("pin configured",
		"port", p.name, "pin", pin,
		"mode", mode, "otype", otype, "speed", speed, "pull", pull)
	b.lastErr = GPIOErrNone
	return nil
}

// SetAltFunc selects the pin's alternate function, 0 through 15.
//
// The selector is applied even if the pin is not in alternate mode; that
// mismatch is reported as a diagnostic warning, not an error, matching
// hardware where the AF registers are always writable.
func (b *Bank) SetAltFunc(portNum, pin, af int) error {
	if portNum < 0 || portNum >= MaxPorts || pin < 0 || pin >= MaxPins {
		return b.fail(GPIOErrPinMux)
	}
	if af < 0 || af > 15 {
		return b.fail(GPIOErrPinMux)
	}
	if err := b.injectFault("SetAltFunc"); err != nil {
		return err
	}
	p := &b.ports[portNum]
	n := &p.pins[pin]
	if n.Mode != ModeAlternate {
		b.log.Warn("pin not in alternate mode", "port", p.name, "pin", pin, "mode", n.Mode)
	}
	n.AltFunc = af
	b.log.Info("alternate function set", "port", p.name, "pin", pin, "af", af)
	b.lastErr = GPIOErrNone
	return nil
}

// WritePin drives the pin to the given level.
//
// Any non-zero value is treated as 1. Writing a pin that is not configured
// as an output still stores the level, but is reported as a diagnostic
// warning since it has no effect on real hardware.
func (b *Bank) WritePin(portNum, pin, value int) error {
	if portNum < 0 || portNum >= MaxPorts {
		return b.fail(GPIOErrInvalidPort)
	}
	if pin < 0 || pin >= MaxPins {
		return b.fail(GPIOErrInvalidPin)
	}
	if err := b.injectFault("WritePin"); err != nil {
		return err
	}
	p := &b.ports[portNum]
	n := &p.pins[pin]
	if n.Mode != ModeOutput {
		b.log.Warn("write to non-output pin", "port", p.name, "pin", pin, "mode", n.Mode)
	}
	if value != 0 {
		n.Value = 1
	} else {
		n.Value = 0
	}
	b.log.Info("pin write", "port", p.name, "pin", pin, "value", n.Value)
	b.lastErr = GPIOErrNone
	return nil
}

// ReadPin returns the pin's current level.
//
// For a pin in input mode the level is re-derived from the pull
// configuration: pull-up reads 1, pull-down reads 0, and a floating input
// reads a random level from the simulator's seeded source. The derived
// level is stored as the pin's value. Pins in any other mode return the
// stored value unchanged.
func (b *Bank) ReadPin(portNum, pin int) (int, error) {
	if portNum < 0 || portNum >= MaxPorts {
		return 0, b.fail(GPIOErrInvalidPort)
	}
	if pin < 0 || pin >= MaxPins {
		return 0, b.fail(GPIOErrInvalidPin)
	}
	if err := b.injectFault("ReadPin"); err != nil {
		return 0, err
	}
	p := &b.ports[portNum]
	n := &p.pins[pin]
	v := n.Value
	if n.Mode == ModeInput {
		switch n.Pull {
		case PullUp:
			v = 1
		case PullDown:
			v = 0
		default:
			// floating input
			v = b.rng.Intn(2)
		}
		n.Value = v
	}
	b.log.Info("pin read", "port", p.name, "pin", pin, "value", v)
	b.lastErr = GPIOErrNone
	return v, nil
}

// TogglePin flips the pin's stored level.
func (b *Bank) TogglePin(portNum, pin int) error {
	if portNum < 0 || portNum >= MaxPorts {
		return b.fail(GPIOErrInvalidPort)
	}
	if pin < 0 || pin >= MaxPins {
		return b.fail(GPIOErrInvalidPin)
	}
	p := &b.ports[portNum]
	n := &p.pins[pin]
	n.Value ^= 1
	b.log.Info("pin toggled", "port", p.name, "pin", pin, "value", n.Value)
	b.lastErr = GPIOErrNone
	return nil
}

// ArmInterrupt puts the pin in the given edge-triggered interrupt mode and
// registers the handler to be invoked when a matching edge is simulated.
//
// The mode must be one of ModeITRising, ModeITFalling or ModeITBoth.
// A nil handler is accepted; a matching edge then only produces a
// diagnostic.
func (b *Bank) ArmInterrupt(portNum, pin int, mode PinMode, handler PinHandler) error {
	if portNum < 0 || portNum >= MaxPorts {
		return b.fail(GPIOErrInvalidPort)
	}
	if pin < 0 || pin >= MaxPins {
		return b.fail(GPIOErrInvalidPin)
	}
	if !mode.interrupt() {
		return b.fail(GPIOErrInterruptConfig)
	}
	if err := b.injectFault("ArmInterrupt"); err != nil {
		return err
	}
	p := &b.ports[portNum]
	n := &p.pins[pin]
	n.Mode = mode
	n.armed = true
	n.handler = handler
	b.log.Info("interrupt armed", "port", p.name, "pin", pin, "mode", mode)
	b.lastErr = GPIOErrNone
	return nil
}

// SimulateEdge raises an edge on the pin from the simulated outside world.
//
// If the pin is armed and the edge matches its trigger mode the registered
// handler is invoked synchronously before SimulateEdge returns. Edges on
// unarmed or out-of-range pins, non-matching edges, and missing handlers
// are all reported as diagnostics only.
//
// SimulateEdge never touches the interrupt controller; wiring a pin event
// to an NVIC line is the caller's decision.
func (b *Bank) SimulateEdge(portNum, pin int, edge Edge) {
	if portNum < 0 || portNum >= MaxPorts || pin < 0 || pin >= MaxPins {
		b.log.Error("edge on invalid pin", "port", portNum, "pin", pin)
		return
	}
	p := &b.ports[portNum]
	n := &p.pins[pin]
	if !n.armed {
		b.log.Warn("edge on unarmed pin", "port", p.name, "pin", pin)
		return
	}
	triggered := n.Mode == ModeITBoth ||
		(n.Mode == ModeITRising && edge == EdgeRising) ||
		(n.Mode == ModeITFalling && edge == EdgeFalling)
	if !triggered {
		b.log.Info("edge ignored", "port", p.name, "pin", pin, "edge", edge, "mode", n.Mode)
		return
	}
	b.log.Info("interrupt triggered", "port", p.name, "pin", pin, "edge", edge)
	if n.handler == nil {
		b.log.Warn("no handler registered", "port", p.name, "pin", pin)
		return
	}
	n.handler.HandleEdge(portNum, pin)
}

// PortState renders a human-readable dump of the port for test logs.
//
// The exact wording and layout carry no stability guarantee.
func (b *Bank) PortState(portNum int) (string, error) {
	if portNum < 0 || portNum >= MaxPorts {
		return "", b.fail(GPIOErrInvalidPort)
	}
	p := &b.ports[portNum]
	var sb strings.Builder
	clock := "disabled"
	if p.clockEnabled {
		clock = "enabled"
	}
	fmt.Fprintf(&sb, "GPIO%s clock=%s\n", p.name, clock)
	fmt.Fprintf(&sb, "pin mode       otype      speed  pull      af value armed\n")
	for i := range p.pins {
		n := &p.pins[i]
		fmt.Fprintf(&sb, "%3d %-10s %-10s %-6s %-9s %2d %5d %v\n",
			i, n.Mode, n.OutputType, n.Speed, n.Pull, n.AltFunc, n.Value, n.armed)
	}
	return sb.String(), nil
}
