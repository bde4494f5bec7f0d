// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package sweepcore is the top-level package of the sweepcore module.

It ties together the sub-packages that make up a continuous wideband
spectrum sweep engine: fft (windowed FFT context), sweepprog (tuning
program validation), sink (pluggable output contract), and sweep (the
sweep state machine and receive pipeline that is the core of this
module). See the sweep package for the engine itself.
*/
package sweepcore
