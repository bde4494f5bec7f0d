// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweep_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/widebandsweep/sweepcore/fft"
	"github.com/widebandsweep/sweepcore/peripheral/simradio"
	"github.com/widebandsweep/sweepcore/sink"
	"github.com/widebandsweep/sweepcore/sweep"
	"github.com/widebandsweep/sweepcore/sweepprog"
)

// waitFor polls cond until it returns true or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestOneShotSweepEmitsTextRecords(t *testing.T) {
	radio := simradio.New(20_000_000, []simradio.Tone{{FreqHz: 2_400_500_000, PowerDb: 0}}, -80)
	dev := simradio.Open("test")

	var buf bytes.Buffer
	snk := sink.NewFile(&buf)

	var s sweep.State
	require.NoError(t, s.Init(radio, dev, 20_000_000, 20_000_000))
	require.NoError(t, s.SetOutput(sink.TextRecordMode, sink.FileLike, snk))
	require.NoError(t, s.SetRange([]sweepprog.PairMHz{{MinMHz: 2400, MaxMHz: 2420}}))
	require.NoError(t, s.SetupFFT(fft.Estimate, 1_000_000))
	require.Equal(t, 20, s.FFT.N)

	require.NoError(t, s.Start(1))

	waitFor(t, 2*time.Second, func() bool {
		return s.SweepCount() >= 1
	})

	require.NoError(t, s.Stop())
	require.NoError(t, radio.Close(dev))
	require.NoError(t, s.Close())

	require.Greater(t, buf.Len(), 0)
	require.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
	require.Contains(t, buf.String(), "2400000000")
}

func TestBypassFFTSkipsSliceEmission(t *testing.T) {
	radio := simradio.New(20_000_000, nil, -80)
	dev := simradio.Open("test")

	var buf bytes.Buffer
	snk := sink.NewFile(&buf)

	var s sweep.State
	require.NoError(t, s.Init(radio, dev, 20_000_000, 20_000_000))
	require.NoError(t, s.SetOutput(sink.TextRecordMode, sink.FileLike, snk))
	require.NoError(t, s.SetRange([]sweepprog.PairMHz{{MinMHz: 2400, MaxMHz: 2420}}))
	require.NoError(t, s.SetupFFT(fft.Estimate, 1_000_000))
	require.NoError(t, s.SetRawSampleCallback(nil, true))

	require.NoError(t, s.Start(1))

	waitFor(t, 2*time.Second, func() bool {
		return s.SweepCount() >= 1
	})

	require.NoError(t, s.Stop())
	require.NoError(t, radio.Close(dev))
	require.NoError(t, s.Close())

	require.Equal(t, 0, buf.Len())
}

func TestRawSampleCallbackUnsubscribesOnNonZeroReturn(t *testing.T) {
	radio := simradio.New(20_000_000, nil, -80)
	dev := simradio.Open("test")

	var s sweep.State
	require.NoError(t, s.Init(radio, dev, 20_000_000, 20_000_000))
	require.NoError(t, s.SetOutput(sink.CallbackOnlyMode, sink.NopType, sink.Nop{}))
	require.NoError(t, s.SetRange([]sweepprog.PairMHz{{MinMHz: 2400, MaxMHz: 2420}}))
	require.NoError(t, s.SetupFFT(fft.Estimate, 1_000_000))

	var calls int
	require.NoError(t, s.SetRawSampleCallback(func(st *sweep.State, buf []byte, validLen int) int {
		calls++
		return 1
	}, false))

	require.NoError(t, s.Start(1))

	waitFor(t, 2*time.Second, func() bool {
		return s.SweepCount() >= 1
	})

	require.NoError(t, s.Stop())
	require.NoError(t, radio.Close(dev))
	require.NoError(t, s.Close())

	require.Equal(t, 1, calls)
}

// TestIFFTStreamModeFlushesAssemblyBuffer is scenario S4: at a sweep
// boundary with IFFTStreamMode configured, finishSweep must invert the
// assembled spectrum and write the full N*StepCount complex samples
// (8*N*StepCount bytes, interleaved float32 I/Q) to the sink.
func TestIFFTStreamModeFlushesAssemblyBuffer(t *testing.T) {
	radio := simradio.New(20_000_000, []simradio.Tone{{FreqHz: 2_400_500_000, PowerDb: 0}}, -80)
	dev := simradio.Open("test")

	var buf bytes.Buffer
	snk := sink.NewFile(&buf)

	var s sweep.State
	require.NoError(t, s.Init(radio, dev, 20_000_000, 20_000_000))
	require.NoError(t, s.SetOutput(sink.IFFTStreamMode, sink.FileLike, snk))
	require.NoError(t, s.SetRange([]sweepprog.PairMHz{{MinMHz: 2400, MaxMHz: 2420}}))
	require.NoError(t, s.SetupFFT(fft.Estimate, 1_000_000))
	require.Equal(t, 20, s.FFT.N)
	require.Equal(t, 1, s.Program.TotalStepCount())

	require.NoError(t, s.Start(1))

	waitFor(t, 2*time.Second, func() bool {
		return s.SweepCount() >= 1
	})

	require.NoError(t, s.Stop())
	require.NoError(t, radio.Close(dev))
	require.NoError(t, s.Close())

	// s.FFT is nil after Close; N was asserted to be 20 above.
	require.Equal(t, 8*20*s.Program.TotalStepCount(), buf.Len())
}

// TestFiniteSweepCompletesExactCount is the FINITE(k) half of testable
// property #5: Start(k) must complete exactly k sweeps, and FlagExiting
// must not be observed until the k-th boundary. The FFT-ready callback
// last runs during the k-th sweep, before its closing boundary, so the
// highest count it sees is k-1; the block at the k-th boundary returns
// on EXITING before reaching the callback.
func TestFiniteSweepCompletesExactCount(t *testing.T) {
	const k = 3

	radio := simradio.New(20_000_000, nil, -80)
	dev := simradio.Open("test")

	var s sweep.State
	require.NoError(t, s.Init(radio, dev, 20_000_000, 20_000_000))
	require.NoError(t, s.SetOutput(sink.CallbackOnlyMode, sink.NopType, sink.Nop{}))
	require.NoError(t, s.SetRange([]sweepprog.PairMHz{{MinMHz: 2400, MaxMHz: 2420}}))
	require.NoError(t, s.SetupFFT(fft.Estimate, 1_000_000))

	var mu sync.Mutex
	var sawExitingEarly bool
	var maxCountSeen uint64
	require.NoError(t, s.SetFFTReadyCallback(func(st *sweep.State, freqHz uint64, buf []byte, validLen int) int {
		mu.Lock()
		defer mu.Unlock()
		count := st.SweepCount()
		if count < k && st.Flags()&sweep.FlagExiting != 0 {
			sawExitingEarly = true
		}
		if count > maxCountSeen {
			maxCountSeen = count
		}
		return 0
	}))

	require.NoError(t, s.Start(k))

	waitFor(t, 2*time.Second, func() bool {
		return s.SweepCount() >= k
	})

	require.NoError(t, s.Stop())
	require.NoError(t, radio.Close(dev))
	require.NoError(t, s.Close())

	mu.Lock()
	defer mu.Unlock()
	require.False(t, sawExitingEarly, "EXITING observed before the %d-th sweep completed", k)
	require.Equal(t, uint64(k-1), maxCountSeen)
}

func TestControlAPIOrderingPreconditions(t *testing.T) {
	radio := simradio.New(20_000_000, nil, -80)
	dev := simradio.Open("test")

	var s sweep.State
	require.ErrorIs(t, s.SetOutput(sink.TextRecordMode, sink.FileLike, sink.Nop{}), sweep.ErrNotReady)

	require.NoError(t, s.Init(radio, dev, 20_000_000, 20_000_000))
	require.ErrorIs(t, s.Init(radio, dev, 20_000_000, 20_000_000), sweep.ErrAlreadyInitialized)

	require.ErrorIs(t, s.SetRange(nil), sweep.ErrNotReady)

	require.ErrorIs(t, s.SetSampleRate(1), sweep.ErrUnsupported)
}
