// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pubsink

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/widebandsweep/sweepcore/sink"
)

func TestPublisherWithoutSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	p := New(prometheus.NewRegistry())
	require.NoError(t, p.WriteText(sink.TextRecord{HzLow: 1, HzHigh: 2}))
	require.NoError(t, p.WriteBinary(sink.BinaryRecord{HzLow: 1, HzHigh: 2}))
	require.NoError(t, p.WriteIFFT(make([]complex64, 4)))
}

func TestPublisherNewSweepRotatesSession(t *testing.T) {
	t.Parallel()

	p := New(prometheus.NewRegistry())
	first := p.sessionID
	p.NewSweep()
	require.NotEqual(t, first, p.sessionID)
}
