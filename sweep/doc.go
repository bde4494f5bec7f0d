// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package sweep is the core of the module: the sweep state machine
(State and its Control API) and the receive pipeline that turns
peripheral transfers into sink output.

State is the single entity whose lifecycle gates everything else. Its
Control API methods enforce the ordering rules in the spec (Init before
SetOutput before SetRange, and SetupFFT before Start; Init installs a
default range, so SetupFFT itself only needs Init). The receive
pipeline, installed as a peripheral.StreamCallback by Start, is the hot
path: it parses block headers, detects sweep boundaries, windows and
transforms each block, extracts the two valid quarter-band slices per
tuning step, and writes them to the configured sink.
*/
package sweep
