// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peripheral

// Handle is an opaque reference to a selected, opened device. Its
// concrete type is owned by whatever Peripheral implementation issued
// it.
type Handle any

// TuningRange is one peripheral-facing range of the sweep program, in
// exact Hz bounds.
type TuningRange struct {
	MinHz uint64
	MaxHz uint64
}

// TuningPlan is the sweep program handed to the peripheral by Start.
// It mirrors the init_sweep() contract: a list of ranges, the tuning
// step width, a frequency offset applied by the hardware, and whether
// I/Q samples are interleaved in the delivered transfers.
type TuningPlan struct {
	Ranges            []TuningRange
	TuneStepHz        uint64
	OffsetHz          int64
	BlocksPerTransfer int
	Interleaved       bool
}

// StreamCallback is invoked by the peripheral implementation for every
// transfer it receives from the device. buf is the full transfer
// buffer; validLen is the number of leading bytes that are valid. The
// return value is the status reported back to the peripheral: zero
// continues streaming, non-zero requests teardown.
type StreamCallback func(buf []byte, validLen int) int

// Peripheral is the external collaborator contract consumed by the
// sweep engine. A real implementation binds this to a USB driver; the
// engine treats it as an opaque dependency injected at Init time.
type Peripheral interface {
	// InitSweep programs the device with the given tuning plan.
	InitSweep(dev Handle, plan TuningPlan) error
	// StartRxSweep begins streaming transfers to cb.
	StartRxSweep(dev Handle, cb StreamCallback) error
	// IsStreaming reports whether the device is currently streaming.
	IsStreaming(dev Handle) bool
	// Close releases the device.
	Close(dev Handle) error
}
