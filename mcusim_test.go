// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/embedded26/go-mcusim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSim(t *testing.T) {
	s := mcusim.NewSim(mcusim.WithName("mcusim_test"), mcusim.WithSeed(1))
	assert.Equal(t, "mcusim_test", s.Name)
	require.NotNil(t, s.GPIO)
	require.NotNil(t, s.NVIC)
	require.NotNil(t, s.ADC)
	require.NotNil(t, s.HAL)

	// power-on defaults
	for port := 0; port < mcusim.MaxPorts; port++ {
		assert.False(t, s.GPIO.ClockEnabled(port))
	}
	p, err := s.GPIO.Pin(3, 11)
	require.Nil(t, err)
	assert.Equal(t, mcusim.Pin{}, p)
	assert.Equal(t, mcusim.ModeInput, p.Mode)
	assert.False(t, p.Armed())

	l, lerr := s.NVIC.Line(0)
	require.Nil(t, lerr)
	assert.False(t, l.Enabled)
	assert.False(t, l.Pending)
	assert.False(t, l.Active)
	assert.Equal(t, mcusim.MaxPriority, l.Priority)
	assert.Equal(t, "IRQ_0", l.Name)

	// unnamed sims are assigned distinct generated names
	a := mcusim.NewSim()
	b := mcusim.NewSim()
	assert.NotEmpty(t, a.Name)
	assert.NotEqual(t, a.Name, b.Name)
}

func TestIndependentInstances(t *testing.T) {
	a := mcusim.NewSim(mcusim.WithSeed(1))
	b := mcusim.NewSim(mcusim.WithSeed(1))

	newOutputPin(t, a, 0, 5)
	require.Nil(t, a.GPIO.WritePin(0, 5, 1))
	require.Nil(t, a.NVIC.Enable(6))

	// b is untouched
	assert.False(t, b.GPIO.ClockEnabled(0))
	p, err := b.GPIO.Pin(0, 5)
	require.Nil(t, err)
	assert.Equal(t, mcusim.Pin{}, p)
	l, lerr := b.NVIC.Line(6)
	require.Nil(t, lerr)
	assert.False(t, l.Enabled)
}

func TestReset(t *testing.T) {
	s := mcusim.NewSim(mcusim.WithSeed(1))
	newOutputPin(t, s, 0, 5)
	require.Nil(t, s.GPIO.WritePin(0, 5, 1))
	require.Nil(t, s.NVIC.Enable(6))
	require.Nil(t, s.NVIC.SetPriority(6, 2))
	require.Nil(t, s.NVIC.SetPending(6))
	_, err := s.ADC.Read(3)
	require.Nil(t, err)

	s.Reset()

	assert.False(t, s.GPIO.ClockEnabled(0))
	p, perr := s.GPIO.Pin(0, 5)
	require.Nil(t, perr)
	assert.Equal(t, mcusim.Pin{}, p)
	l, lerr := s.NVIC.Line(6)
	require.Nil(t, lerr)
	assert.False(t, l.Enabled)
	assert.False(t, l.Pending)
	assert.Equal(t, mcusim.MaxPriority, l.Priority)
	assert.Zero(t, s.ADC.Value(3))
}

func TestTraceWriter(t *testing.T) {
	var buf bytes.Buffer
	s := mcusim.NewSim(mcusim.WithSeed(1), mcusim.WithTraceWriter(&buf))

	require.Nil(t, s.GPIO.EnableClock(0))
	require.Nil(t, s.NVIC.Enable(6))

	// every state transition lands in the trace
	assert.NotZero(t, buf.Len())
}

func TestSimpleton(t *testing.T) {
	s := mcusim.NewSimpleton(mcusim.WithSeed(1))

	require.Nil(t, s.ConfigureOutput(5))
	assert.Nil(t, s.Write(5, 1))
	v, err := s.Read(5)
	assert.Nil(t, err)
	assert.Equal(t, 1, v)
	assert.Nil(t, s.Toggle(5))
	v, err = s.Read(5)
	assert.Nil(t, err)
	assert.Equal(t, 0, v)

	require.Nil(t, s.ConfigureInput(3, mcusim.PullUp))
	v, err = s.Read(3)
	assert.Nil(t, err)
	assert.Equal(t, 1, v)

	// the full Sim surface remains available
	assert.Nil(t, s.NVIC.Enable(6))
}

func TestBlinkScenario(t *testing.T) {
	s := mcusim.NewSim(mcusim.WithSeed(1))

	require.Nil(t, s.GPIO.EnableClock(0))
	require.Nil(t, s.GPIO.ConfigurePin(0, 5, mcusim.ModeOutput, mcusim.PushPull, mcusim.SpeedHigh, mcusim.PullNone))
	require.Nil(t, s.GPIO.WritePin(0, 5, 1))
	checkPinValue(t, s, 0, 5, 1)
	require.Nil(t, s.GPIO.TogglePin(0, 5))
	checkPinValue(t, s, 0, 5, 0)
}

func ExampleNewSim() {
	s := mcusim.NewSim(mcusim.WithSeed(1))

	s.GPIO.EnableClock(0)
	s.GPIO.ConfigurePin(0, 5, mcusim.ModeOutput, mcusim.PushPull, mcusim.SpeedHigh, mcusim.PullNone)
	s.GPIO.WritePin(0, 5, 1)
	v, _ := s.GPIO.ReadPin(0, 5)
	fmt.Println(v)
	// Output: 1
}
