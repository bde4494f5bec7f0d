// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweep

import (
	"errors"

	"github.com/widebandsweep/sweepcore/fft"
	"github.com/widebandsweep/sweepcore/sweepprog"
)

// The five enumerated configuration errors from the spec's external
// interfaces section. They are ordinary Go error values rather than
// negative integer codes; the teacher's ErrT-as-error pattern is
// followed without the reserved-code-band concern a real C ABI forces.
var (
	// ErrNotReady is returned when a control-API call is made before
	// its precondition state has been reached (e.g. SetRange before
	// SetOutput).
	ErrNotReady = errors.New("sweep: not ready")
	// ErrIncompatibleMode is returned when SetRange is given anything
	// other than exactly one range while the IFFT sink is active.
	ErrIncompatibleMode = sweepprog.ErrIncompatibleMode
	// ErrInvalidRangeCount is returned when SetRange is given more
	// than sweepprog.MaxRanges pairs.
	ErrInvalidRangeCount = sweepprog.ErrInvalidRangeCount
	// ErrInvalidRange is returned when a range pair fails 0<=min<=max<=7250.
	ErrInvalidRange = sweepprog.ErrInvalidRange
	// ErrInvalidFFTSize is returned by SetupFFT when the derived
	// transform size is out of the supported 4..8180 range.
	ErrInvalidFFTSize = fft.ErrInvalidFFTSize

	// ErrAlreadySet is returned by SetWriteMutex on a second call; the
	// hook is first-setter-wins.
	ErrAlreadySet = errors.New("sweep: already set")
	// ErrAlreadyInitialized is returned by Init on a second call.
	ErrAlreadyInitialized = errors.New("sweep: already initialized")
	// ErrReleased names the released state that Close marks with
	// FlagReleased. No Control API method returns it: calls made after
	// Close are not rejected on that ground.
	ErrReleased = errors.New("sweep: released")
	// ErrUnsupported is returned by SetSampleRate: an in-flight sample
	// rate change is not implemented, matching the source's
	// unimplemented rebuild path (see SPEC_FULL.md Open Question
	// decisions).
	ErrUnsupported = errors.New("sweep: unsupported")
	// ErrNoSink names the condition of a file-like sink that is
	// configured but unbound. The receive pipeline reports that
	// condition to the peripheral as a -1 status, not as this value.
	ErrNoSink = errors.New("sweep: file-like sink not bound")
)
