// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package pubsink is a network-publisher Sink, the kind of higher-level
tool the sweepcore module is designed to let plug in without
re-implementing the real-time signal path (see the top-level package
doc).

Each record emitted by the pipeline is tagged with a per-sweep
google/uuid session identifier, marshaled to JSON, and broadcast to any
subscribed gorilla/websocket clients. A set of prometheus/client_golang
metrics track sweeps completed, bytes published, and the number of
currently-subscribed clients.
*/
package pubsink
