// SPDX-FileCopyrightText: 2024 embedded26
//
// SPDX-License-Identifier: MIT

package mcusim

import (
	"log/slog"
	"math/rand"

	"github.com/pkg/errors"
)

const (
	// ADCChannels is the number of analog input channels.
	ADCChannels = 16

	// ADCResolution is the number of quantization steps (10-bit converter).
	ADCResolution = 1024
)

// ErrInvalidChannel is returned for channel indices outside
// 0..ADCChannels-1.
var ErrInvalidChannel = errors.New("invalid adc channel")

// ADC models a bank of analog inputs producing synthetic samples.
//
// There is no signal source behind the channels, so each conversion
// returns a uniform sample from the simulator's seeded random source.
type ADC struct {
	values [ADCChannels]int

	rng *rand.Rand
	log *slog.Logger
}

func newADC(rng *rand.Rand, log *slog.Logger) *ADC {
	return &ADC{rng: rng, log: log}
}

func (a *ADC) reset() {
	a.values = [ADCChannels]int{}
}

// Read performs a conversion on the channel, returning a sample in
// [0, ADCResolution) and storing it as the channel's current value.
func (a *ADC) Read(channel int) (int, error) {
	if channel < 0 || channel >= ADCChannels {
		return 0, ErrInvalidChannel
	}
	v := a.rng.Intn(ADCResolution)
	a.values[channel] = v
	a.log.Info("adc sample", "channel", channel, "value", v)
	return v, nil
}

// Value returns the channel's most recent sample without converting.
// Unread and out-of-range channels report 0.
func (a *ADC) Value(channel int) int {
	if channel < 0 || channel >= ADCChannels {
		return 0
	}
	return a.values[channel]
}
