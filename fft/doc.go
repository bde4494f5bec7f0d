// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package fft owns the transform plan, analysis window, and scratch
buffers used to turn one tuning step's worth of interleaved 8-bit IQ
samples into a power spectrum.

A Context is sized once, by Build, for a configuration (sample rate,
requested bin width, and, for wideband IFFT reassembly, the number of
tuning steps in the active sweep program). It is owned exclusively by
the sweep state that built it and must not be mutated concurrently
with a running sweep.
*/
package fft
