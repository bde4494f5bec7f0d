// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

// Nop is a Sink that performs no writes. It is useful when a raw-sample
// or FFT-ready callback is the intended consumer and no byte output is
// wanted.
type Nop struct{}

func (Nop) WriteText(TextRecord) error          { return nil }
func (Nop) WriteBinary(BinaryRecord) error      { return nil }
func (Nop) WriteIFFT(samples []complex64) error { return nil }
