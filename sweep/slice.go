// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweep

import "math"

// lowerSliceStart returns the first bin index of a transform's lower
// quarter-band slice, chosen to avoid DC and the band edges.
func lowerSliceStart(n int) int {
	return 1 + 5*n/8
}

// upperSliceStart returns the first bin index of a transform's upper
// quarter-band slice.
func upperSliceStart(n int) int {
	return 1 + n/8
}

// sliceLen returns the number of bins in either quarter-band slice.
func sliceLen(n int) int {
	return n / 4
}

// assemblyIndices computes the wideband IFFT assembly buffer offsets
// for the lower and upper quarter-band slices of a tuning step at
// freqHz, relative to the sweep's first range low bound, in an
// assembly buffer of length n*stepCount.
func assemblyIndices(freqHz, firstRangeLowHz uint64, binWidth float64, n, stepCount int) (idxLower, idxUpper int) {
	m := n * stepCount
	idx0 := int(math.Round((float64(freqHz) - float64(firstRangeLowHz)) / binWidth))
	idxLower = (((idx0 + m/2) % m) + m) % m
	idxUpper = (idxLower + n/2) % m
	return idxLower, idxUpper
}
