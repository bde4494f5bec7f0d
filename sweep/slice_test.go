// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweep

import (
	"testing"

	"pgregory.net/rapid"
)

func TestSliceBoundsAvoidDCAndEdges(t *testing.T) {
	for _, n := range []int{20, 28, 36, 100} {
		lower := lowerSliceStart(n)
		upper := upperSliceStart(n)
		length := sliceLen(n)
		if lower <= 0 || lower+length > n {
			t.Fatalf("n=%d: lower slice [%d,%d) out of bounds", n, lower, lower+length)
		}
		if upper <= 0 || upper+length > n {
			t.Fatalf("n=%d: upper slice [%d,%d) out of bounds", n, upper, upper+length)
		}
	}
}

// TestAssemblyIndicesDisjoint checks property 4 from the testable
// properties list: with one dwell per tuning step and the tuning step
// equal to the sample rate (the configuration the IFFT stream tests
// use), every step's two slices land at disjoint index ranges and no
// two steps collide.
func TestAssemblyIndicesDisjoint(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.SampledFrom([]int{20, 28, 36}).Draw(rt, "n")
		stepCount := rapid.IntRange(1, 8).Draw(rt, "stepCount")
		sampleRate := 20_000_000.0
		binWidth := sampleRate / float64(n)
		tuneStepHz := sampleRate
		firstLow := uint64(2_400_000_000)
		length := sliceLen(n)
		m := n * stepCount

		covered := make([]bool, m)
		for step := 0; step < stepCount; step++ {
			freq := firstLow + uint64(float64(step)*tuneStepHz)
			idxLower, idxUpper := assemblyIndices(freq, firstLow, binWidth, n, stepCount)

			if idxLower < 0 || idxLower+length > m {
				rt.Fatalf("step %d: lower index %d+%d exceeds assembly buffer of size %d", step, idxLower, length, m)
			}
			if idxUpper < 0 || idxUpper+length > m {
				rt.Fatalf("step %d: upper index %d+%d exceeds assembly buffer of size %d", step, idxUpper, length, m)
			}
			if idxLower < idxUpper && idxLower+length > idxUpper {
				rt.Fatalf("step %d: lower slice overlaps upper slice", step)
			}
			if idxUpper < idxLower && idxUpper+length > idxLower {
				rt.Fatalf("step %d: upper slice overlaps lower slice", step)
			}
			for _, idx := range []int{idxLower, idxUpper} {
				for k := 0; k < length; k++ {
					if covered[idx+k] {
						rt.Fatalf("step %d: index %d already covered by a previous step", step, idx+k)
					}
					covered[idx+k] = true
				}
			}
		}
	})
}
