// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package simradio is a synthetic peripheral.Peripheral implementation.
It generates correctly-framed transfer blocks for a configured tuning
plan without any real hardware, so the sweep engine can be exercised
end-to-end in tests and in the cmd/wbsweep demo. Each block carries
synthetic I/Q samples built from a small set of injected tones plus
noise, rather than real RF.
*/
package simradio
