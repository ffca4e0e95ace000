// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	// MaxLines is the number of interrupt lines in the controller, sized
	// for the largest STM32 variants.
	MaxLines = 240

	// MaxPriority is the lowest (numerically largest) interrupt priority.
	// Priority 0 is the highest.
	MaxPriority = 15
)

// dispatchBound caps the interrupts serviced by one DispatchAll call.
// A handler may re-arm its own or another line's pending flag, which would
// otherwise loop forever.
const dispatchBound = 100

// IRQHandler services one interrupt line.
//
// Handlers are invoked synchronously from DispatchOne and DispatchAll.
type IRQHandler interface {
	HandleIRQ()
}

// IRQHandlerFunc adapts an ordinary function to an IRQHandler.
type IRQHandlerFunc func()

func (f IRQHandlerFunc) HandleIRQ() {
	f()
}

// Line is one addressable interrupt source in the controller.
//
// A line moves from inactive to pending when a request is recorded, to
// active while its handler runs, and back to inactive when the handler
// returns. Enabled is an orthogonal gate: dispatch ignores disabled lines,
// but disabling a line does not clear its pending flag.
type Line struct {
	Enabled  bool
	Pending  bool
	Active   bool
	Priority int
	Name     string

	handler IRQHandler
}

// NVIC models a priority-arbitrated interrupt line table.
type NVIC struct {
	lines        [MaxLines]Line
	globalEnable bool

	faults  *faultInjector
	log     *slog.Logger
	lastErr NVICError
}

func newNVIC(faults *faultInjector, log *slog.Logger) *NVIC {
	n := &NVIC{faults: faults, log: log}
	n.reset()
	return n
}

// reset returns every line to its power-on state: disabled, inactive,
// lowest priority, no handler. Global dispatch is enabled.
func (n *NVIC) reset() {
	for i := range n.lines {
		n.lines[i] = Line{Priority: MaxPriority, Name: fmt.Sprintf("IRQ_%d", i)}
	}
	n.globalEnable = true
	n.lastErr = NVICErrNone
}

// LastError returns the controller's last recorded error code.
func (n *NVIC) LastError() NVICError {
	return n.lastErr
}

// Line returns a copy of the line's current state, for inspection by tests.
func (n *NVIC) Line(line int) (Line, error) {
	if line < 0 || line >= MaxLines {
		return Line{}, NVICErrInvalidLine
	}
	return n.lines[line], nil
}

func (n *NVIC) fail(code NVICError) error {
	n.lastErr = code
	n.log.Error("operation failed", "err", code.Error())
	return code
}

func (n *NVIC) injectFault(op string) error {
	idx, ok := n.faults.inject(numNVICFaultCodes)
	if !ok {
		return nil
	}
	code := NVICError(idx + 1)
	n.lastErr = code
	n.log.Warn("fault injected", "op", op, "err", code.Error())
	return code
}

// Enable allows the line to be dispatched. Pending and active flags are
// untouched.
func (n *NVIC) Enable(line int) error {
	if line < 0 || line >= MaxLines {
		return n.fail(NVICErrInvalidLine)
	}
	if err := n.injectFault("Enable"); err != nil {
		return err
	}
	n.lines[line].Enabled = true
	n.log.Info("irq enabled", "line", line, "name", n.lines[line].Name)
	n.lastErr = NVICErrNone
	return nil
}

// Disable removes the line from dispatch consideration.
//
// A pending request survives disabling and will be serviced if the line is
// re-enabled.
func (n *NVIC) Disable(line int) error {
	if line < 0 || line >= MaxLines {
		return n.fail(NVICErrInvalidLine)
	}
	n.lines[line].Enabled = false
	n.log.Info("irq disabled", "line", line, "name", n.lines[line].Name)
	n.lastErr = NVICErrNone
	return nil
}

// SetPriority assigns the line's priority, 0 (highest) through MaxPriority.
func (n *NVIC) SetPriority(line, priority int) error {
	if line < 0 || line >= MaxLines {
		return n.fail(NVICErrInvalidLine)
	}
	if priority < 0 || priority > MaxPriority {
		return n.fail(NVICErrInvalidPriority)
	}
	if err := n.injectFault("SetPriority"); err != nil {
		return err
	}
	n.lines[line].Priority = priority
	n.log.Info("irq priority set", "line", line, "priority", priority)
	n.lastErr = NVICErrNone
	return nil
}

// Priority returns the line's current priority.
func (n *NVIC) Priority(line int) (int, error) {
	if line < 0 || line >= MaxLines {
		return MaxPriority, NVICErrInvalidLine
	}
	return n.lines[line].Priority, nil
}

// SetHandler registers the handler invoked when the line is dispatched.
//
// A non-empty name replaces the line's display name in diagnostics; an
// empty name keeps the current one.
func (n *NVIC) SetHandler(line int, handler IRQHandler, name string) error {
	if line < 0 || line >= MaxLines {
		return n.fail(NVICErrInvalidLine)
	}
	n.lines[line].handler = handler
	if name != "" {
		n.lines[line].Name = name
	}
	n.log.Info("irq handler registered", "line", line, "name", n.lines[line].Name)
	n.lastErr = NVICErrNone
	return nil
}

// SetPending records an interrupt request on the line.
//
// The enabled flag is not consulted; a request may be recorded on a
// disabled line.
func (n *NVIC) SetPending(line int) error {
	if line < 0 || line >= MaxLines {
		return n.fail(NVICErrInvalidLine)
	}
	if err := n.injectFault("SetPending"); err != nil {
		return err
	}
	n.lines[line].Pending = true
	n.log.Info("irq pending", "line", line, "name", n.lines[line].Name)
	n.lastErr = NVICErrNone
	return nil
}

// ClearPending discards any unserviced request on the line.
func (n *NVIC) ClearPending(line int) error {
	if line < 0 || line >= MaxLines {
		return n.fail(NVICErrInvalidLine)
	}
	n.lines[line].Pending = false
	n.log.Info("irq pending cleared", "line", line, "name", n.lines[line].Name)
	n.lastErr = NVICErrNone
	return nil
}

// IsPending reports whether the line has an unserviced request.
// Out-of-range lines report false.
func (n *NVIC) IsPending(line int) bool {
	if line < 0 || line >= MaxLines {
		return false
	}
	return n.lines[line].Pending
}

// SetGlobalEnable opens or closes the controller-wide dispatch gate,
// the equivalent of the PRIMASK bit. While closed no line is dispatched,
// but pending requests continue to accumulate.
func (n *NVIC) SetGlobalEnable(enable bool) {
	n.globalEnable = enable
	n.log.Info("global interrupts", "enabled", enable)
}

// findPending returns the line with the numerically lowest priority among
// those enabled, pending and not active, or -1 if there is none.
// Ties go to the lowest line number, since the ascending scan only moves
// the selection on a strict improvement.
func (n *NVIC) findPending() int {
	best := -1
	bestPriority := MaxPriority + 1
	for i := range n.lines {
		l := &n.lines[i]
		if l.Enabled && l.Pending && !l.Active && l.Priority < bestPriority {
			bestPriority = l.Priority
			best = i
		}
	}
	return best
}

// DispatchOne services the highest priority eligible line, if any.
//
// The line's pending flag is cleared and it is marked active for the
// synchronous duration of its handler. A missing handler is a diagnostic,
// not an error. Returns the serviced line number and true, or -1 and false
// if dispatch is globally disabled or no line is eligible.
func (n *NVIC) DispatchOne() (int, bool) {
	if !n.globalEnable {
		return -1, false
	}
	i := n.findPending()
	if i < 0 {
		return -1, false
	}
	l := &n.lines[i]
	n.log.Info("dispatching irq", "line", i, "name", l.Name, "priority", l.Priority)
	l.Pending = false
	l.Active = true
	if l.handler != nil {
		l.handler.HandleIRQ()
	} else {
		n.log.Warn("no handler for irq", "line", i, "name", l.Name)
	}
	l.Active = false
	n.log.Info("irq complete", "line", i, "name", l.Name)
	return i, true
}

// DispatchAll services pending lines until none remain eligible.
//
// Eligibility and priority order are recomputed before each dispatch, so a
// handler that changes priorities or pending flags affects the remainder
// of the same call. If dispatchBound interrupts have been serviced and
// lines are still eligible, DispatchAll stops and returns
// NVICErrTooManyPending along with the count serviced so far; line state
// remains consistent.
func (n *NVIC) DispatchAll() (int, error) {
	processed := 0
	for processed < dispatchBound {
		if _, ok := n.DispatchOne(); !ok {
			return processed, nil
		}
		processed++
	}
	if n.globalEnable && n.findPending() >= 0 {
		n.log.Error("dispatch bound exceeded", "processed", processed)
		return processed, n.fail(NVICErrTooManyPending)
	}
	return processed, nil
}

// State renders a human-readable dump of the non-idle lines for test logs.
//
// The exact wording and layout carry no stability guarantee.
func (n *NVIC) State() string {
	var sb strings.Builder
	global := "disabled"
	if n.globalEnable {
		global = "enabled"
	}
	fmt.Fprintf(&sb, "NVIC global=%s\n", global)
	count := 0
	for i := range n.lines {
		l := &n.lines[i]
		if !l.Enabled && !l.Pending && !l.Active {
			continue
		}
		fmt.Fprintf(&sb, "%3d %-20s enabled=%-5v pending=%-5v active=%-5v priority=%d\n",
			i, l.Name, l.Enabled, l.Pending, l.Active, l.Priority)
		count++
	}
	if count == 0 {
		sb.WriteString("(no active or pending interrupts)\n")
	}
	return sb.String()
}
