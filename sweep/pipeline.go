// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweep

import (
	"sync/atomic"

	"github.com/widebandsweep/sweepcore/sink"
)

// HandleTransfer is the hot path: it is installed as a
// peripheral.StreamCallback by Start and is invoked once per transfer
// received from the peripheral. It returns zero to keep streaming and
// non-zero to request teardown.
func (s *State) HandleTransfer(buf []byte, validLen int) int {
	if s.RawCallback != nil {
		if s.RawCallback(s, buf, validLen) != 0 {
			s.Locker.Lock()
			s.RawCallback = nil
			s.Locker.Unlock()
		}
	}

	if s.SinkType == sink.FileLike && s.Sink == nil {
		return -1
	}
	if s.hasFlag(FlagExiting) {
		return 0
	}
	if atomic.LoadInt32(&s.transferTimestamp) == 0 || !s.hasFlag(FlagNormalizedTimestamp) {
		s.TransferTime = s.Now()
		atomic.StoreInt32(&s.transferTimestamp, 1)
	}
	atomic.AddUint64(&s.byteCount, uint64(validLen))

	firstRangeLowHz := s.Program.Ranges[0].MinHz

	for j := 0; j < s.BlocksPerTransfer; j++ {
		blockBase := j * s.BlockSize
		if blockBase+s.BlockSize > validLen {
			break
		}
		block := buf[blockBase : blockBase+s.BlockSize]

		hdr := parseBlockHeader(block)
		if !hdr.ok {
			continue
		}
		freqHz := hdr.freqHz

		if freqHz == firstRangeLowHz {
			if s.hasFlag(FlagSweepStarted) {
				s.finishSweep()
			}
			s.setFlag(FlagSweepStarted)
		}

		if s.hasFlag(FlagExiting) || s.Lifecycle() == Stopped {
			return 0
		}
		if !s.hasFlag(FlagSweepStarted) {
			continue
		}
		if freqHz > uint64(FreqMaxMHz)*1_000_000 {
			continue
		}
		if s.hasFlag(FlagBypassFFT) {
			continue
		}

		s.windowBlock(block)
		s.FFT.Forward()
		s.FFT.PowerSpectrum()

		if s.FFTCallback != nil {
			if s.FFTCallback(s, freqHz, buf, validLen) != 0 {
				s.Locker.Lock()
				s.FFTCallback = nil
				s.Locker.Unlock()
			}
		}

		s.emitSlices(freqHz, firstRangeLowHz)
	}

	return 0
}

// finishSweep runs the sweep-boundary-close actions: flushing the
// IFFT assembly buffer (when applicable), advancing the sweep
// counter, calling NewSweep on a sink that has one, restamping the
// clock if requested, and setting EXITING
// once the configured Finiteness bound is reached.
func (s *State) finishSweep() {
	if s.SinkMode == sink.IFFTStreamMode && !s.hasFlag(FlagBypassFFT) && s.Sink != nil {
		s.FFT.Inverse()
		scale := complex(1/float64(s.FFT.N*s.FFT.StepCount), 0)
		samples := make([]complex64, len(s.FFT.IFFTOut))
		for i, v := range s.FFT.IFFTOut {
			samples[i] = complex64(v * scale)
		}
		_ = s.Sink.WriteIFFT(samples)
	}

	n := atomic.AddUint64(&s.sweepCount, 1)

	if ns, ok := s.Sink.(interface{ NewSweep() }); ok {
		ns.NewSweep()
	}

	if s.hasFlag(FlagNormalizedTimestamp) {
		s.TransferTime = s.Now()
	}

	if s.Finiteness().Satisfied(n) {
		s.Locker.Lock()
		s.setFlag(FlagExiting)
		s.Locker.Unlock()
	}
}

// windowBlock reads the trailing 2*N bytes of block as interleaved
// signed 8-bit I/Q samples, applies the Hann window, and normalizes by
// 1/128 into the FFT context's forward-transform input buffer.
func (s *State) windowBlock(block []byte) {
	n := s.FFT.N
	samples := block[len(block)-2*n:]
	w := s.FFT.Window
	const scale = 1.0 / 128.0
	for i := 0; i < n; i++ {
		re := float64(int8(samples[2*i])) * w[i] * scale
		im := float64(int8(samples[2*i+1])) * w[i] * scale
		s.FFT.ForwardIn[i] = complex(re, im)
	}
}

// emitSlices extracts the lower and upper quarter-band slices of the
// just-transformed block and routes them to the active sink mode.
func (s *State) emitSlices(freqHz, firstRangeLowHz uint64) {
	n := s.FFT.N
	lowerStart := lowerSliceStart(n)
	upperStart := upperSliceStart(n)
	length := sliceLen(n)
	sr := s.FFT.SampleRate
	binWidth := s.FFT.BinWidth

	switch s.SinkMode {
	case sink.TextRecordMode:
		if s.Sink == nil {
			return
		}
		_ = s.Sink.WriteText(sink.TextRecord{
			Timestamp: s.TransferTime,
			HzLow:     freqHz,
			HzHigh:    freqHz + uint64(sr/4),
			BinWidth:  binWidth,
			N:         n,
			Powers:    append([]float64(nil), s.FFT.Power[lowerStart:lowerStart+length]...),
		})
		_ = s.Sink.WriteText(sink.TextRecord{
			Timestamp: s.TransferTime,
			HzLow:     freqHz + uint64(sr/2),
			HzHigh:    freqHz + uint64(3*sr/4),
			BinWidth:  binWidth,
			N:         n,
			Powers:    append([]float64(nil), s.FFT.Power[upperStart:upperStart+length]...),
		})

	case sink.BinaryRecordMode:
		if s.Sink == nil {
			return
		}
		_ = s.Sink.WriteBinary(sink.BinaryRecord{
			HzLow:  freqHz,
			HzHigh: freqHz + uint64(sr/4),
			Powers: toFloat32(s.FFT.Power[lowerStart : lowerStart+length]),
		})
		_ = s.Sink.WriteBinary(sink.BinaryRecord{
			HzLow:  freqHz + uint64(sr/2),
			HzHigh: freqHz + uint64(3*sr/4),
			Powers: toFloat32(s.FFT.Power[upperStart : upperStart+length]),
		})

	case sink.IFFTStreamMode:
		idxLower, idxUpper := assemblyIndices(freqHz, firstRangeLowHz, binWidth, n, s.FFT.StepCount)
		copy(s.FFT.IFFTIn[idxLower:idxLower+length], s.FFT.ForwardOut[lowerStart:lowerStart+length])
		copy(s.FFT.IFFTIn[idxUpper:idxUpper+length], s.FFT.ForwardOut[upperStart:upperStart+length])

	case sink.CallbackOnlyMode:
		// The FFT-ready callback, if any, has already fired.
	}
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
