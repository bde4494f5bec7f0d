// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweepprog

import "errors"

// MaxRanges is R, the documented limit on the number of ranges that
// can be installed in a single sweep program.
const MaxRanges = 10

// MaxBoundMHz is the maximum frequency bound, in MHz, accepted for a
// range endpoint.
const MaxBoundMHz = 7250

var (
	// ErrInvalidRangeCount is returned when more than MaxRanges pairs
	// are provided.
	ErrInvalidRangeCount = errors.New("sweepprog: invalid range count")
	// ErrInvalidRange is returned when a pair violates 0 <= min <= max
	// <= MaxBoundMHz.
	ErrInvalidRange = errors.New("sweepprog: invalid range")
	// ErrIncompatibleMode is returned when a number of ranges other
	// than one is supplied while the active sink requires exactly one.
	ErrIncompatibleMode = errors.New("sweepprog: incompatible output mode")
)

// PairMHz is a single caller-supplied frequency range, expressed as
// 16-bit MHz bounds, the unit the peripheral tuning plan is specified
// in.
type PairMHz struct {
	MinMHz uint16
	MaxMHz uint16
}

// Range is a single validated, rounded range. MinHz and MaxHz are exact
// Hz bounds; MaxHz has been rounded up from the caller's MaxMHz so that
// MaxHz-MinHz is an integer multiple of the program's tuning step.
// StepCount is the number of tuning-step dwells the peripheral will
// make across this range.
type Range struct {
	MinHz     uint64
	MaxHz     uint64
	StepCount int
}

// Program is a validated, rounded list of ranges plus the tuning step,
// in Hz, that was used to derive them.
type Program struct {
	Ranges     []Range
	TuneStepHz uint64
}

// DefaultPair is the default program installed when a caller passes a
// zero-length pair list: the full documented tuning range.
var DefaultPair = PairMHz{MinMHz: 0, MaxMHz: MaxBoundMHz}

// Configure validates pairs and returns a rounded Program. singleRange
// is true when the active sink requires exactly one range (the IFFT
// wideband-reconstruction sink). tuneStepHz is the width, in Hz, of one
// tuning-step dwell.
//
// A zero-length pairs slice installs DefaultPair. This happens after
// the singleRange check, so an IFFT-mode caller must explicitly pass
// one pair; it cannot rely on the zero-length default to satisfy the
// "exactly one range" requirement.
func Configure(pairs []PairMHz, singleRange bool, tuneStepHz uint64) (*Program, error) {
	if len(pairs) > MaxRanges {
		return nil, ErrInvalidRangeCount
	}
	if singleRange && len(pairs) != 1 {
		return nil, ErrIncompatibleMode
	}
	if len(pairs) == 0 {
		pairs = []PairMHz{DefaultPair}
	}
	if tuneStepHz == 0 {
		return nil, ErrInvalidRange
	}

	ranges := make([]Range, 0, len(pairs))
	for _, p := range pairs {
		if p.MinMHz > p.MaxMHz || p.MaxMHz > MaxBoundMHz {
			return nil, ErrInvalidRange
		}
		minHz := uint64(p.MinMHz) * 1_000_000
		maxHz0 := uint64(p.MaxMHz) * 1_000_000

		stepCount := 1 + floorDiv(int64(maxHz0)-int64(minHz)-1, int64(tuneStepHz))
		if stepCount < 1 {
			stepCount = 1
		}
		maxHz := minHz + uint64(stepCount)*tuneStepHz

		ranges = append(ranges, Range{
			MinHz:     minHz,
			MaxHz:     maxHz,
			StepCount: stepCount,
		})
	}

	return &Program{Ranges: ranges, TuneStepHz: tuneStepHz}, nil
}

// floorDiv computes the floor of a/b for integer a and positive b.
func floorDiv(a, b int64) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return int(q)
}

// TotalStepCount returns the sum of StepCount across all ranges in the
// program, i.e. the total number of tuning-step dwells per sweep.
func (p *Program) TotalStepCount() int {
	var total int
	for _, r := range p.Ranges {
		total += r.StepCount
	}
	return total
}
