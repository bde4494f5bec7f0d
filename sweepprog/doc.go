// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package sweepprog validates a list of frequency ranges and derives the
tuning-step count the peripheral library needs to run a sweep. It is a
pure, side-effect-free validation layer; it knows nothing about sweep
state, output modes, or the receive pipeline.
*/
package sweepprog
