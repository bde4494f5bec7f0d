// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFileWriteTextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NewFile(&buf)
	ts := timeMustParse(t, "2024-01-02T03:04:05.123456Z")
	err := f.WriteText(TextRecord{
		Timestamp: ts,
		HzLow:     2400000000,
		HzHigh:    2405000000,
		BinWidth:  1000000,
		N:         20,
		Powers:    []float64{-1, -2, -3, -4, -5},
	})
	require.NoError(t, err)
	require.Equal(
		t,
		"2024-01-02, 03:04:05.123456, 2400000000, 2405000000, 1000000.00, 20, -1.00, -2.00, -3.00, -4.00, -5.00\n",
		buf.String(),
	)
}

// TestFileWriteBinaryRoundTrip is property test #3: a binary-record
// output parsed back recovers the same powers the pipeline wrote, and
// hz_high - hz_low equals the slice's bandwidth.
func TestFileWriteBinaryRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "n")
		powers := make([]float32, n)
		for i := range powers {
			powers[i] = float32(rapid.Float64Range(-200, 0).Draw(t, "p"))
		}
		low := rapid.Uint64Range(0, 1<<40).Draw(t, "low")
		high := low + 5_000_000

		var buf bytes.Buffer
		f := NewFile(&buf)
		rec := BinaryRecord{HzLow: low, HzHigh: high, Powers: powers}
		require.NoError(t, f.WriteBinary(rec))

		b := buf.Bytes()
		gotLen := binary.LittleEndian.Uint32(b[0:4])
		require.Equal(t, rec.RecordLength(), gotLen)
		require.Equal(t, uint32(16+4*n), gotLen)

		gotLow := binary.LittleEndian.Uint64(b[4:12])
		gotHigh := binary.LittleEndian.Uint64(b[12:20])
		require.Equal(t, low, gotLow)
		require.Equal(t, high, gotHigh)
		require.Equal(t, uint64(5_000_000), gotHigh-gotLow)

		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(b[20+4*i:])
			got := math.Float32frombits(bits)
			require.Equal(t, powers[i], got)
		}
	})
}

func TestFileWriteIFFTLength(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NewFile(&buf)
	samples := make([]complex64, 20)
	require.NoError(t, f.WriteIFFT(samples))
	require.Equal(t, 8*len(samples), buf.Len())
}
