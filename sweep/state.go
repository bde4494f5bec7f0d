// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweep

import (
	"sync/atomic"
	"time"

	"github.com/widebandsweep/sweepcore/fft"
	"github.com/widebandsweep/sweepcore/peripheral"
	"github.com/widebandsweep/sweepcore/sink"
	"github.com/widebandsweep/sweepcore/sweepprog"
)

// DefaultBlockSize is the number of bytes in one framed transfer
// block, matching the reference hardware's USB transfer framing.
const DefaultBlockSize = 16384

// DefaultBlocksPerTransfer is the number of blocks delivered in one
// peripheral transfer when not otherwise configured.
const DefaultBlocksPerTransfer = 1

// FreqMaxMHz bounds the decoded block frequency accepted by the
// pipeline; anything above it is a defensive skip (the device should
// never emit it).
const FreqMaxMHz = sweepprog.MaxBoundMHz

// State is the single mutable record whose lifecycle gates the whole
// engine: configuration references, sink, callbacks, counters, and
// flags. See the Control API methods in this file for the operations
// that mutate it and the ordering rules they enforce.
type State struct {
	Periph peripheral.Peripheral
	Device peripheral.Handle

	SampleRateHz float64
	TuneStepHz   uint64
	Program      *sweepprog.Program

	SinkMode sink.Mode
	SinkType sink.Type
	Sink     sink.Sink

	RawCallback RawSampleCallback
	FFTCallback FFTReadyCallback

	Locker WriteLocker

	FFT *fft.Context

	BlockSize         int
	BlocksPerTransfer int

	// Now returns the current wall-clock time. It defaults to
	// time.Now and is overridable for deterministic tests.
	Now func() time.Time

	TransferTime      time.Time
	transferTimestamp int32 // 0 until TransferTime has been set once

	sweepCount uint64
	byteCount  uint64

	lifecycle  atomic.Int32
	finiteness atomic.Uint64

	flags atomic.Uint32
}

// Flags returns the current flag bitset. It is safe to call
// concurrently with the receive pipeline.
func (s *State) Flags() Flags {
	return Flags(s.flags.Load())
}

func (s *State) hasFlag(f Flags) bool {
	return Flags(s.flags.Load())&f != 0
}

func (s *State) setFlag(f Flags) {
	for {
		old := s.flags.Load()
		if old&uint32(f) == uint32(f) {
			return
		}
		if s.flags.CompareAndSwap(old, old|uint32(f)) {
			return
		}
	}
}

func (s *State) clearFlag(f Flags) {
	for {
		old := s.flags.Load()
		if old&uint32(f) == 0 {
			return
		}
		if s.flags.CompareAndSwap(old, old&^uint32(f)) {
			return
		}
	}
}

// Lifecycle returns the current lifecycle state. It is safe to call
// concurrently with the receive pipeline.
func (s *State) Lifecycle() LifecycleState {
	return LifecycleState(s.lifecycle.Load())
}

func (s *State) setLifecycle(l LifecycleState) {
	s.lifecycle.Store(int32(l))
}

// Finiteness returns the current sweep-bound setting. It is safe to
// call concurrently with the receive pipeline.
func (s *State) Finiteness() Finiteness {
	return unpackFiniteness(s.finiteness.Load())
}

func (s *State) setFiniteness(f Finiteness) {
	s.finiteness.Store(packFiniteness(f))
}

func packFiniteness(f Finiteness) uint64 {
	return uint64(uint32(f.Kind))<<32 | uint64(f.MaxSweeps)
}

func unpackFiniteness(v uint64) Finiteness {
	return Finiteness{Kind: FinitenessKind(int32(v >> 32)), MaxSweeps: uint32(v)}
}

// SweepCount returns the number of fully completed sweeps.
func (s *State) SweepCount() uint64 {
	return atomic.LoadUint64(&s.sweepCount)
}

// ByteCount returns the number of transfer bytes processed so far.
func (s *State) ByteCount() uint64 {
	return atomic.LoadUint64(&s.byteCount)
}

// Init installs defaults and marks the state ready to accept output
// configuration. It fails if called more than once.
func (s *State) Init(periph peripheral.Peripheral, dev peripheral.Handle, sampleRateHz float64, tuneStepHz uint64) error {
	if s.hasFlag(FlagInitialized) {
		return ErrAlreadyInitialized
	}
	s.Periph = periph
	s.Device = dev
	s.SampleRateHz = sampleRateHz
	s.TuneStepHz = tuneStepHz
	s.BlockSize = DefaultBlockSize
	s.BlocksPerTransfer = DefaultBlocksPerTransfer
	s.Now = time.Now
	s.Locker = NoopLocker{}
	s.setLifecycle(Stopped)

	prog, err := sweepprog.Configure(nil, false, tuneStepHz)
	if err != nil {
		return err
	}
	s.Program = prog

	s.setFlag(FlagInitialized)
	return nil
}

// SetOutput records the sink mode, type, and sink implementation.
// Requires Init to have run.
func (s *State) SetOutput(mode sink.Mode, typ sink.Type, snk sink.Sink) error {
	if !s.hasFlag(FlagInitialized) {
		return ErrNotReady
	}
	s.Locker.Lock()
	defer s.Locker.Unlock()

	s.SinkMode = mode
	s.SinkType = typ
	s.Sink = snk
	s.setFlag(FlagOutputSet)
	return nil
}

// SetRange validates and installs the sweep program. Requires
// SetOutput to have run.
func (s *State) SetRange(pairs []sweepprog.PairMHz) error {
	if !s.hasFlag(FlagOutputSet) {
		return ErrNotReady
	}
	prog, err := sweepprog.Configure(pairs, s.SinkMode.RequiresSingleRange(), s.TuneStepHz)
	if err != nil {
		return err
	}
	s.Program = prog
	return nil
}

// SetupFFT builds the FFT context for the currently configured range.
// Requires a range to already be configured (Init installs a default
// range, so this only requires Init to have run).
func (s *State) SetupFFT(strategy fft.PlanStrategy, requestedBinHz float64) error {
	if s.Program == nil {
		return ErrNotReady
	}
	withInverse := s.SinkMode == sink.IFFTStreamMode
	ctx, err := fft.Build(s.SampleRateHz, requestedBinHz, s.Program.TotalStepCount(), strategy, withInverse)
	if err != nil {
		return err
	}
	s.FFT = ctx
	return nil
}

// SetRawSampleCallback installs the per-transfer raw-sample callback.
// When bypass is true, FlagBypassFFT is set, disabling all FFT-derived
// output.
func (s *State) SetRawSampleCallback(fn RawSampleCallback, bypass bool) error {
	if !s.hasFlag(FlagInitialized) {
		return ErrNotReady
	}
	s.Locker.Lock()
	defer s.Locker.Unlock()
	s.RawCallback = fn
	if bypass {
		s.setFlag(FlagBypassFFT)
	} else {
		s.clearFlag(FlagBypassFFT)
	}
	return nil
}

// SetFFTReadyCallback installs the per-block FFT-ready callback.
func (s *State) SetFFTReadyCallback(fn FFTReadyCallback) error {
	if !s.hasFlag(FlagInitialized) {
		return ErrNotReady
	}
	s.Locker.Lock()
	defer s.Locker.Unlock()
	s.FFTCallback = fn
	return nil
}

// SetWriteMutex installs the write-lock hooks the control API uses to
// guard mutation of flags, the sink, and the callback slots. It is
// first-setter-wins: a second call returns ErrAlreadySet.
func (s *State) SetWriteMutex(l WriteLocker) error {
	if _, ok := s.Locker.(NoopLocker); !ok {
		return ErrAlreadySet
	}
	s.Locker = l
	return nil
}

// SetSampleRate is unimplemented: an in-flight sample rate change
// would require rebuilding the FFT plan, which this module does not
// support. See SPEC_FULL.md's Open Question decisions.
func (s *State) SetSampleRate(float64) error {
	return ErrUnsupported
}

// Start hands the sweep program to the peripheral and begins
// streaming. If the state is already running, it stops first. Requires
// the FFT context to be built.
func (s *State) Start(maxSweeps uint32) error {
	if s.FFT == nil {
		return ErrNotReady
	}
	if s.Lifecycle() == Running {
		if err := s.Stop(); err != nil {
			return err
		}
	}

	s.Locker.Lock()
	atomic.StoreUint64(&s.sweepCount, 0)
	atomic.StoreUint64(&s.byteCount, 0)
	s.clearFlag(FlagExiting)
	s.clearFlag(FlagSweepStarted)
	atomic.StoreInt32(&s.transferTimestamp, 0)

	switch {
	case maxSweeps == 1:
		s.setFiniteness(Finiteness{Kind: OneShot, MaxSweeps: 1})
	case maxSweeps > 1:
		s.setFiniteness(Finiteness{Kind: Finite, MaxSweeps: maxSweeps})
	default:
		s.setFiniteness(Finiteness{Kind: Continuous})
	}
	s.Locker.Unlock()

	plan := peripheral.TuningPlan{
		TuneStepHz:        s.TuneStepHz,
		BlocksPerTransfer: s.BlocksPerTransfer,
	}
	for _, r := range s.Program.Ranges {
		plan.Ranges = append(plan.Ranges, peripheral.TuningRange{MinHz: r.MinHz, MaxHz: r.MaxHz})
	}

	if err := s.Periph.InitSweep(s.Device, plan); err != nil {
		return err
	}

	s.setLifecycle(Running)
	if err := s.Periph.StartRxSweep(s.Device, s.HandleTransfer); err != nil {
		s.setLifecycle(Stopped)
		return err
	}
	return nil
}

// Stop is cooperative: it marks the state EXITING and STOPPED and
// returns immediately. The receive pipeline observes this at the next
// block boundary.
func (s *State) Stop() error {
	s.Locker.Lock()
	defer s.Locker.Unlock()
	s.setFlag(FlagExiting)
	s.setLifecycle(Stopped)
	atomic.StoreUint64(&s.sweepCount, 0)
	atomic.StoreUint64(&s.byteCount, 0)
	return nil
}

// Close stops the sweep if running, frees the FFT context, clears
// callbacks and the write-lock hook, and marks the state released. It
// must not be called while a transfer callback may still fire; the
// caller is responsible for draining the peripheral first.
func (s *State) Close() error {
	if s.Lifecycle() == Running {
		_ = s.Stop()
	}
	if s.FFT != nil {
		s.FFT.Destroy()
		s.FFT = nil
	}
	s.RawCallback = nil
	s.FFTCallback = nil
	s.Locker = NoopLocker{}
	s.setFlag(FlagReleased)
	return nil
}
