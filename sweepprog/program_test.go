// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweepprog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestConfigureDefaultRange(t *testing.T) {
	t.Parallel()

	prog, err := Configure(nil, false, 10_000_000)
	require.NoError(t, err)
	require.Len(t, prog.Ranges, 1)
	require.Equal(t, uint64(0), prog.Ranges[0].MinHz)
	require.Equal(t, uint64(MaxBoundMHz)*1_000_000, prog.Ranges[0].MaxHz)
}

func TestConfigureRejectsTooManyRanges(t *testing.T) {
	t.Parallel()

	pairs := make([]PairMHz, MaxRanges+1)
	_, err := Configure(pairs, false, 10_000_000)
	require.ErrorIs(t, err, ErrInvalidRangeCount)
}

func TestConfigureRejectsInvalidRange(t *testing.T) {
	t.Parallel()

	_, err := Configure([]PairMHz{{MinMHz: 100, MaxMHz: 50}}, false, 10_000_000)
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = Configure([]PairMHz{{MinMHz: 0, MaxMHz: MaxBoundMHz + 1}}, false, 10_000_000)
	require.ErrorIs(t, err, ErrInvalidRange)
}

// TestConfigureS5 is scenario S5 from the spec: IFFT mode with two pairs
// must fail incompatible-mode with no mutation.
func TestConfigureS5(t *testing.T) {
	t.Parallel()

	_, err := Configure([]PairMHz{{0, 100}, {200, 300}}, true, 10_000_000)
	require.ErrorIs(t, err, ErrIncompatibleMode)
}

func TestConfigureSingleRangeZeroPairsIsIncompatible(t *testing.T) {
	t.Parallel()

	_, err := Configure(nil, true, 10_000_000)
	require.ErrorIs(t, err, ErrIncompatibleMode)
}

func TestConfigureS4StepCount(t *testing.T) {
	t.Parallel()

	// S4: sample_rate=20MHz, single range [2400,2420]MHz, tuning step
	// width 20MHz (one dwell covers the whole range) => step_count=1.
	prog, err := Configure([]PairMHz{{2400, 2420}}, true, 20_000_000)
	require.NoError(t, err)
	require.Equal(t, 1, prog.Ranges[0].StepCount)
	require.Equal(t, uint64(2400_000_000), prog.Ranges[0].MinHz)
	require.Equal(t, uint64(2420_000_000), prog.Ranges[0].MaxHz)
}

// TestConfigureInvariants is property test #2: for any configured range
// [a,b] with a<=b<=7250, after configuration (b_new-a) mod step == 0 and
// step_count == (b_new-a)/step, with step_count >= 1.
func TestConfigureInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint16Range(0, MaxBoundMHz).Draw(t, "a")
		b := rapid.Uint16Range(a, MaxBoundMHz).Draw(t, "b")
		step := rapid.Uint64Range(1, 20_000_000).Draw(t, "step")

		prog, err := Configure([]PairMHz{{a, b}}, false, step)
		require.NoError(t, err)

		r := prog.Ranges[0]
		require.GreaterOrEqual(t, r.StepCount, 1)
		require.Equal(t, uint64(0), (r.MaxHz-r.MinHz)%step)
		require.Equal(t, r.StepCount, int((r.MaxHz-r.MinHz)/step))
	})
}
