// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simradio

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/widebandsweep/sweepcore/peripheral"
)

func TestRadioGeneratesFramedBlocks(t *testing.T) {
	r := New(20_000_000, []Tone{{FreqHz: 2_450_000_000, PowerDb: -10}}, -60)
	dev := Open("test")

	plan := peripheral.TuningPlan{
		Ranges:            []peripheral.TuningRange{{MinHz: 2_400_000_000, MaxHz: 2_420_000_000}},
		TuneStepHz:        20_000_000,
		BlocksPerTransfer: 1,
	}
	require.NoError(t, r.InitSweep(dev, plan))

	var transfers int32
	done := make(chan struct{})
	require.NoError(t, r.StartRxSweep(dev, func(buf []byte, validLen int) int {
		require.Equal(t, byte(0x7F), buf[0])
		require.Equal(t, byte(0x7F), buf[1])
		if atomic.AddInt32(&transfers, 1) >= 3 {
			close(done)
			return 1
		}
		return 0
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transfers")
	}
	require.NoError(t, r.Close(dev))
	require.False(t, r.IsStreaming(dev))
}

func TestRadioRejectsEmptyPlan(t *testing.T) {
	r := New(20_000_000, nil, -60)
	dev := Open("test")
	err := r.InitSweep(dev, peripheral.TuningPlan{})
	require.Error(t, err)
}
