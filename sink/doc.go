// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package sink defines the pluggable output contract the receive
pipeline writes records to. A Sink is a pure consumer: it never blocks
the pipeline beyond the cost of its own write and never calls back
into the sweep state.

One concrete, file-like implementation is provided here: File, which
dispatches on the active Mode to write text records, binary records,
or raw IFFT samples to an io.Writer. A Nop implementation is also
provided for callback-only configurations. Higher-level sinks that
publish over a network are implemented in the sibling sink/pubsink
package so that this package stays dependency-light.
*/
package sink
