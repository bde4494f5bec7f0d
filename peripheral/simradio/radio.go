// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simradio

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"sync"

	charmlog "github.com/charmbracelet/log"

	"github.com/widebandsweep/sweepcore/peripheral"
)

// DefaultBlockSize matches the transfer block framing the sweep
// engine expects.
const DefaultBlockSize = 16384

// Tone is one synthetic signal injected into the generated spectrum.
type Tone struct {
	FreqHz  float64
	PowerDb float64
}

// deviceHandle is the peripheral.Handle issued by Open.
type deviceHandle struct {
	id string
}

// Radio is a software-only peripheral.Peripheral. It accepts a tuning
// plan and generates transfer blocks matching it, carrying synthetic
// I/Q samples built from Tones plus Gaussian noise, cycling through the
// plan's ranges indefinitely until Close is called.
type Radio struct {
	SampleRate   float64
	BlockSize    int
	Tones        []Tone
	NoiseFloorDb float64
	Logger       *charmlog.Logger

	mu        sync.Mutex
	plan      peripheral.TuningPlan
	streaming bool
	stop      chan struct{}
	done      chan struct{}
}

// New returns a Radio generating the given tones over a Gaussian noise
// floor at noiseFloorDb.
func New(sampleRate float64, tones []Tone, noiseFloorDb float64) *Radio {
	return &Radio{
		SampleRate:   sampleRate,
		BlockSize:    DefaultBlockSize,
		Tones:        tones,
		NoiseFloorDb: noiseFloorDb,
	}
}

// Open returns a handle for use with the Peripheral methods. Radio
// only ever drives one sweep at a time; the handle carries no real
// device state.
func Open(id string) peripheral.Handle {
	return deviceHandle{id: id}
}

// InitSweep records the tuning plan to generate blocks for.
func (r *Radio) InitSweep(_ peripheral.Handle, plan peripheral.TuningPlan) error {
	if len(plan.Ranges) == 0 {
		return errors.New("simradio: tuning plan has no ranges")
	}
	if plan.TuneStepHz == 0 {
		return errors.New("simradio: tuning plan has zero tune step")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.BlockSize == 0 {
		r.BlockSize = DefaultBlockSize
	}
	r.plan = plan
	return nil
}

// StartRxSweep begins generating transfers in a background goroutine,
// invoking cb once per transfer until it returns non-zero or Close is
// called.
func (r *Radio) StartRxSweep(_ peripheral.Handle, cb peripheral.StreamCallback) error {
	r.mu.Lock()
	if r.streaming {
		r.mu.Unlock()
		return errors.New("simradio: already streaming")
	}
	plan := r.plan
	if len(plan.Ranges) == 0 {
		r.mu.Unlock()
		return errors.New("simradio: InitSweep not called")
	}
	r.streaming = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	stop := r.stop
	done := r.done
	blockSize := r.BlockSize
	r.mu.Unlock()

	if r.Logger != nil {
		r.Logger.Info("starting synthetic sweep", "ranges", len(plan.Ranges), "tuneStepHz", plan.TuneStepHz)
	}

	go r.run(plan, blockSize, cb, stop, done)
	return nil
}

// IsStreaming reports whether a generator goroutine is currently
// running.
func (r *Radio) IsStreaming(_ peripheral.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streaming
}

// Close stops the generator goroutine and waits for it to exit.
func (r *Radio) Close(_ peripheral.Handle) error {
	r.mu.Lock()
	if !r.streaming {
		r.mu.Unlock()
		return nil
	}
	close(r.stop)
	done := r.done
	r.mu.Unlock()

	<-done

	r.mu.Lock()
	r.streaming = false
	r.mu.Unlock()
	return nil
}

func (r *Radio) run(plan peripheral.TuningPlan, blockSize int, cb peripheral.StreamCallback, stop, done chan struct{}) {
	defer close(done)

	blocksPerXfer := plan.BlocksPerTransfer
	if blocksPerXfer < 1 {
		blocksPerXfer = 1
	}

	freqs := tuningSequence(plan)
	if len(freqs) == 0 {
		return
	}

	buf := make([]byte, blocksPerXfer*blockSize)
	rng := rand.New(rand.NewSource(1))
	idx := 0

	for {
		select {
		case <-stop:
			return
		default:
		}

		for j := 0; j < blocksPerXfer; j++ {
			freq := freqs[idx%len(freqs)]
			idx++
			r.fillBlock(buf[j*blockSize:(j+1)*blockSize], freq, rng)
		}

		if cb(buf, len(buf)) != 0 {
			return
		}
	}
}

// tuningSequence flattens a tuning plan's ranges into the ordered list
// of tuning-step frequencies a real sweep would visit. Each range
// contributes (MaxHz-MinHz)/TuneStepHz dwells (at least one) starting
// at MinHz; MaxHz itself is an exclusive bound and is not visited.
func tuningSequence(plan peripheral.TuningPlan) []uint64 {
	var freqs []uint64
	for _, rg := range plan.Ranges {
		steps := int((rg.MaxHz - rg.MinHz) / plan.TuneStepHz)
		if steps < 1 {
			steps = 1
		}
		for i := 0; i < steps; i++ {
			f := rg.MinHz + uint64(i)*plan.TuneStepHz
			if f > rg.MaxHz {
				break
			}
			freqs = append(freqs, f)
		}
	}
	return freqs
}

// fillBlock writes the 10-byte header and synthetic I/Q samples for
// one tuning step at freqHz into block.
func (r *Radio) fillBlock(block []byte, freqHz uint64, rng *rand.Rand) {
	block[0] = 0x7F
	block[1] = 0x7F
	binary.LittleEndian.PutUint64(block[2:10], freqHz)

	noiseAmp := math.Pow(10, r.NoiseFloorDb/20)
	for i := 10; i+1 < len(block); i += 2 {
		t := float64(i) / r.SampleRate
		var re, im float64
		for _, tone := range r.Tones {
			if tone.FreqHz < float64(freqHz) || tone.FreqHz >= float64(freqHz)+r.SampleRate {
				continue
			}
			offset := tone.FreqHz - float64(freqHz)
			amp := math.Pow(10, tone.PowerDb/20)
			phase := 2 * math.Pi * offset * t
			re += amp * math.Cos(phase)
			im += amp * math.Sin(phase)
		}
		re += rng.NormFloat64() * noiseAmp
		im += rng.NormFloat64() * noiseAmp
		block[i] = clampInt8(re)
		block[i+1] = clampInt8(im)
	}
}

func clampInt8(v float64) byte {
	switch {
	case v > 127:
		v = 127
	case v < -127:
		v = -127
	}
	return byte(int8(v))
}
