// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fft

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PlanStrategy mirrors the planning strategies offered by the external
// FFT primitive contract. A pure-Go backend has no plan-selection cost,
// but the value is still threaded through and recorded on the Context
// so that a future backend swap (e.g. to an FFTW binding) has somewhere
// to read it from.
type PlanStrategy int

const (
	Estimate PlanStrategy = iota
	Measure
	Patient
	Exhaustive
)

// ErrInvalidFFTSize is returned by Build when the derived transform
// size falls outside the supported range of 4 to 8180 bins.
var ErrInvalidFFTSize = errors.New("fft: invalid fft size")

const (
	minN = 4
	maxN = 8180
	// seedN is the transform size used when no bin width is requested.
	seedN = 20
)

// Context owns the transform plan, analysis window, and scratch buffers
// for a single FFT configuration. It is built once per sweep
// configuration and is not safe for concurrent use; the receive
// pipeline is its only caller while a sweep is running.
type Context struct {
	N          int
	StepCount  int
	SampleRate float64
	BinWidth   float64
	Strategy   PlanStrategy

	Window []float64

	ForwardIn  []complex128
	ForwardOut []complex128
	Power      []float64

	// IFFTIn is the assembly buffer for wideband reconstruction. It is
	// nil unless Build was called withInverse=true. Its length is
	// N*StepCount.
	IFFTIn  []complex128
	IFFTOut []complex128

	forward  *fourier.CmplxFFT
	backward *fourier.CmplxFFT
}

// sizeFor computes the transform size N for the given sample rate and
// requested bin width, applying the odd-multiple-of-four rounding rule.
// A requestedBinWidthHz of 0 means "no bin width requested", which seeds
// the minimum context at N=20.
func sizeFor(sampleRate, requestedBinWidthHz float64) (int, error) {
	var n int
	switch requestedBinWidthHz {
	case 0:
		n = seedN
	default:
		n = int(sampleRate / requestedBinWidthHz)
		if n < minN || n > maxN {
			return 0, ErrInvalidFFTSize
		}
	}
	for (n+4)%8 != 0 {
		n++
	}
	return n, nil
}

// hannWindow returns a Hann window of length n.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Build sizes and allocates a new Context. requestedBinWidthHz of 0
// requests the minimum context. withInverse allocates the wideband
// IFFT assembly buffers and backward plan; it should be true only when
// the active sink is an IFFT stream.
func Build(sampleRate, requestedBinWidthHz float64, stepCount int, strategy PlanStrategy, withInverse bool) (*Context, error) {
	n, err := sizeFor(sampleRate, requestedBinWidthHz)
	if err != nil {
		return nil, err
	}
	if stepCount < 1 {
		stepCount = 1
	}

	c := &Context{
		N:          n,
		StepCount:  stepCount,
		SampleRate: sampleRate,
		BinWidth:   sampleRate / float64(n),
		Strategy:   strategy,
		Window:     hannWindow(n),
		ForwardIn:  make([]complex128, n),
		ForwardOut: make([]complex128, n),
		Power:      make([]float64, n),
		forward:    fourier.NewCmplxFFT(n),
	}

	if withInverse {
		m := n * stepCount
		c.IFFTIn = make([]complex128, m)
		c.IFFTOut = make([]complex128, m)
		c.backward = fourier.NewCmplxFFT(m)
	}

	// Warm-up: execute the plan once on zeroed scratch so the first
	// real block does not pay for any backend-internal lazy setup.
	c.forward.Coefficients(c.ForwardOut, c.ForwardIn)
	if c.backward != nil {
		c.backward.Sequence(c.IFFTOut, c.IFFTIn)
	}

	return c, nil
}

// Destroy releases the Context's buffers. The Context must not be used
// after Destroy returns.
func (c *Context) Destroy() {
	c.Window = nil
	c.ForwardIn = nil
	c.ForwardOut = nil
	c.Power = nil
	c.IFFTIn = nil
	c.IFFTOut = nil
	c.forward = nil
	c.backward = nil
}

// Forward executes the forward transform over ForwardIn, storing the
// result in ForwardOut.
func (c *Context) Forward() {
	c.forward.Coefficients(c.ForwardOut, c.ForwardIn)
}

// HasInverse reports whether Build allocated the backward plan.
func (c *Context) HasInverse() bool {
	return c.backward != nil
}

// Inverse executes the backward transform over IFFTIn, storing the
// unnormalized result in IFFTOut. Callers are responsible for scaling
// by 1/(N*StepCount) per the spec's normalization rule.
func (c *Context) Inverse() {
	c.backward.Sequence(c.IFFTOut, c.IFFTIn)
}

// PowerSpectrum computes the power, in dB, of ForwardOut into Power.
// pwr[i] = 10*log10(|out[i]/N|^2), implemented as log2(magsq)*10/log2(10)
// to match the reference implementation's formulation.
func (c *Context) PowerSpectrum() {
	const log2Of10 = 3.321928094887362
	s := 1.0 / float64(c.N)
	for i, v := range c.ForwardOut {
		re := real(v) * s
		im := imag(v) * s
		magsq := re*re + im*im
		if magsq == 0 {
			c.Power[i] = math.Inf(-1)
			continue
		}
		c.Power[i] = math.Log2(magsq) * 10 / log2Of10
	}
}
