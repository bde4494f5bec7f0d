// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweep

// RawSampleCallback is invoked once per transfer, before any parsing,
// with the raw transfer buffer. A non-zero return unsubscribes the
// callback; it is never treated as fatal to the sweep.
type RawSampleCallback func(s *State, buf []byte, validLen int) int

// FFTReadyCallback is invoked once per block that has been windowed
// and transformed, after the power spectrum has been computed and
// before slice extraction. A non-zero return unsubscribes the
// callback.
type FFTReadyCallback func(s *State, freqHz uint64, buf []byte, validLen int) int
