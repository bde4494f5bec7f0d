// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package peripheral declares the contract the sweep engine expects from
the external USB driver / peripheral control library that actually
tunes the radio and delivers transfers. This package has no
implementation of its own beyond a loopback-friendly Handle type; see
the sibling peripheral/simradio package for a synthetic implementation
used in tests and the cmd/wbsweep demo in place of real hardware.
*/
package peripheral
