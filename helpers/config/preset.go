// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/widebandsweep/sweepcore/fft"
	"github.com/widebandsweep/sweepcore/sink"
	"github.com/widebandsweep/sweepcore/sweepprog"
)

// RangeMHz is one sweep range, in MHz, as written in a preset file.
type RangeMHz struct {
	MinMHz uint16 `yaml:"min_mhz"`
	MaxMHz uint16 `yaml:"max_mhz"`
}

// FFTPreset selects the FFT sizing request and plan strategy.
type FFTPreset struct {
	BinWidthHz float64 `yaml:"bin_width_hz"`
	Strategy   string  `yaml:"strategy"`
}

// SinkPreset selects the output mode, sink implementation, and its
// target, when applicable.
type SinkPreset struct {
	Mode string `yaml:"mode"`
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// Preset is the full contents of a sweep configuration file.
type Preset struct {
	SampleRateHz float64    `yaml:"sample_rate_hz"`
	TuneStepHz   uint64     `yaml:"tune_step_hz"`
	Ranges       []RangeMHz `yaml:"ranges"`
	FFT          FFTPreset  `yaml:"fft"`
	Sink         SinkPreset `yaml:"sink"`
}

// Load reads and parses a preset file.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &p, nil
}

// Pairs converts the preset's range list into sweepprog.PairMHz
// values.
func (p *Preset) Pairs() []sweepprog.PairMHz {
	pairs := make([]sweepprog.PairMHz, len(p.Ranges))
	for i, r := range p.Ranges {
		pairs[i] = sweepprog.PairMHz{MinMHz: r.MinMHz, MaxMHz: r.MaxMHz}
	}
	return pairs
}

// ParsedStrategy parses the FFT preset's plan strategy name,
// defaulting to fft.Estimate for an empty or unrecognized value.
func (f FFTPreset) ParsedStrategy() fft.PlanStrategy {
	switch f.Strategy {
	case "measure":
		return fft.Measure
	case "patient":
		return fft.Patient
	case "exhaustive":
		return fft.Exhaustive
	default:
		return fft.Estimate
	}
}

// ParseMode parses the sink preset's output mode name.
func (s SinkPreset) ParseMode() (sink.Mode, error) {
	switch s.Mode {
	case "text", "text-record":
		return sink.TextRecordMode, nil
	case "binary", "binary-record":
		return sink.BinaryRecordMode, nil
	case "ifft", "ifft-stream":
		return sink.IFFTStreamMode, nil
	case "callback", "callback-only":
		return sink.CallbackOnlyMode, nil
	default:
		return 0, fmt.Errorf("config: unknown sink mode %q", s.Mode)
	}
}

// ParseType parses the sink preset's implementation type name.
func (s SinkPreset) ParseType() (sink.Type, error) {
	switch s.Type {
	case "file", "":
		return sink.FileLike, nil
	case "nop":
		return sink.NopType, nil
	default:
		return 0, fmt.Errorf("config: unknown sink type %q", s.Type)
	}
}
