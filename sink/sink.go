// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import "time"

// Mode is one of the four output flavors the receive pipeline can
// produce.
type Mode int

const (
	// TextRecordMode writes two CSV lines per tuning step.
	TextRecordMode Mode = iota
	// BinaryRecordMode writes two length-prefixed binary records per
	// tuning step.
	BinaryRecordMode
	// IFFTStreamMode reassembles a full sweep's spectrum into a
	// wideband time-domain stream via an inverse FFT.
	IFFTStreamMode
	// CallbackOnlyMode emits nothing; any configured FFT-ready or
	// raw-sample callback is the only consumer.
	CallbackOnlyMode
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case TextRecordMode:
		return "text-record"
	case BinaryRecordMode:
		return "binary-record"
	case IFFTStreamMode:
		return "ifft-stream"
	case CallbackOnlyMode:
		return "callback-only"
	default:
		return "unknown"
	}
}

// RequiresSingleRange reports whether this mode restricts a sweep
// program to exactly one configured range.
func (m Mode) RequiresSingleRange() bool {
	return m == IFFTStreamMode
}

// RequiresFFT reports whether this mode consumes FFT-derived output.
// BYPASS_FFT disables all of these.
func (m Mode) RequiresFFT() bool {
	return m == TextRecordMode || m == BinaryRecordMode || m == IFFTStreamMode
}

// Type distinguishes whether a Sink actually performs writes or is a
// pure no-op, useful when a callback is the only consumer.
type Type int

const (
	// FileLike is an opaque writable target.
	FileLike Type = iota
	// NopType performs no writes; it still allows callbacks to fire.
	NopType
)

// TextRecord is one CSV line of the text-record output format:
// "YYYY-MM-DD, HH:MM:SS.uuuuuu, hz_low, hz_high, bin_width, N, p0, p1, ..."
type TextRecord struct {
	Timestamp time.Time
	HzLow     uint64
	HzHigh    uint64
	BinWidth  float64
	N         int
	Powers    []float64
}

// BinaryRecord is one length-prefixed binary record:
// u32 record_length, u64 hz_low, u64 hz_high, float32 pwr[N/4].
type BinaryRecord struct {
	HzLow  uint64
	HzHigh uint64
	Powers []float32
}

// RecordLength returns the value written in the record's length
// prefix: 2*sizeof(u64) + len(Powers)*sizeof(float32).
func (r BinaryRecord) RecordLength() uint32 {
	return 16 + 4*uint32(len(r.Powers))
}

// Sink is the pure-consumer output contract. The pipeline selects
// which method to call for a configured step based on the active
// Mode; a Sink implementation may leave methods it never expects to
// be called unimplemented by returning nil (e.g. the Nop sink).
type Sink interface {
	// WriteText writes one CSV line for a single slice of a tuning
	// step.
	WriteText(rec TextRecord) error
	// WriteBinary writes one length-prefixed binary record for a
	// single slice of a tuning step.
	WriteBinary(rec BinaryRecord) error
	// WriteIFFT writes the 2*N*StepCount interleaved real/imaginary
	// samples of one fully reassembled sweep.
	WriteIFFT(samples []complex64) error
}
