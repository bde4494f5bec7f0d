// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/widebandsweep/sweepcore/helpers/config"
	"github.com/widebandsweep/sweepcore/peripheral/simradio"
	"github.com/widebandsweep/sweepcore/sink"
	"github.com/widebandsweep/sweepcore/sink/pubsink"
	"github.com/widebandsweep/sweepcore/sweep"
)

// wbsweep drives the sweep engine against the synthetic simradio
// peripheral, for demonstration and manual testing without real
// hardware. It is not part of the library surface.
func wbsweep() error {
	flags := pflag.NewFlagSet("wbsweep", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), strings.TrimSpace(`
Usage: wbsweep [FLAGS]

wbsweep runs the wideband sweep engine against a synthetic software
radio and writes the result to a file, or to nothing with -pub to
serve a live websocket feed instead.

Flags:
`))
		flags.PrintDefaults()
	}

	configPath := flags.StringP("config", "c", "", "Path to a YAML sweep preset. Overrides the other range/FFT/sink flags when set.")
	sampleRateOpt := flags.Float64("sample-rate", 20_000_000, "Sample rate in Hz.")
	tuneStepOpt := flags.Uint64("tune-step", 20_000_000, "Tuning step width in Hz.")
	rangeOpt := flags.String("range", "2400:2480", "Sweep range as minMHz:maxMHz.")
	binWidthOpt := flags.Float64("bin-width", 1_000_000, "Requested FFT bin width in Hz.")
	modeOpt := flags.String("mode", "text", "Sink mode: text, binary, ifft, or callback.")
	outOpt := flags.StringP("out", "o", "wbsweep.out", "Output file path (ignored with -pub).")
	sweepsOpt := flags.Uint32("sweeps", 0, "Maximum sweeps to run; 0 means continuous.")
	pubAddrOpt := flags.String("pub", "", "If set, serve a websocket+metrics publisher on this address instead of writing to -out.")
	tonesOpt := flags.String("tones", "2450000000:-10", "Comma-separated freqHz:powerDb synthetic tones.")
	noiseOpt := flags.Float64("noise", -60, "Synthetic noise floor in dB.")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           charmlog.InfoLevel,
	})

	var preset *config.Preset
	if *configPath != "" {
		var err error
		preset, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	} else {
		pair, err := parseRangeMHz(*rangeOpt)
		if err != nil {
			return err
		}
		preset = &config.Preset{
			SampleRateHz: *sampleRateOpt,
			TuneStepHz:   *tuneStepOpt,
			Ranges:       []config.RangeMHz{pair},
			FFT:          config.FFTPreset{BinWidthHz: *binWidthOpt, Strategy: "estimate"},
			Sink:         config.SinkPreset{Mode: modeName(*modeOpt), Type: "file", Path: *outOpt},
		}
	}

	tones, err := parseTones(*tonesOpt)
	if err != nil {
		return err
	}

	sinkMode, err := preset.Sink.ParseMode()
	if err != nil {
		return err
	}

	var snk sink.Sink
	var reg *prometheus.Registry
	if *pubAddrOpt != "" {
		reg = prometheus.NewRegistry()
		pub := pubsink.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			if err := pub.ServeWS(w, r); err != nil {
				logger.Error("websocket upgrade failed", "err", err)
			}
		})
		srv := &http.Server{Addr: *pubAddrOpt, Handler: mux}
		go func() {
			logger.Info("serving publisher", "addr", *pubAddrOpt)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("publisher server exited", "err", err)
			}
		}()
		snk = pub
	} else {
		f, err := os.Create(preset.Sink.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		snk = sink.NewFile(f)
	}

	radio := simradio.New(preset.SampleRateHz, tones, *noiseOpt)
	radio.Logger = logger
	dev := simradio.Open("wbsweep")

	var state sweep.State
	if err := state.Init(radio, dev, preset.SampleRateHz, preset.TuneStepHz); err != nil {
		return err
	}
	if err := state.SetOutput(sinkMode, sink.FileLike, snk); err != nil {
		return err
	}
	if err := state.SetRange(preset.Pairs()); err != nil {
		return err
	}
	if err := state.SetupFFT(preset.FFT.ParsedStrategy(), preset.FFT.BinWidthHz); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		if _, ok := <-sig; ok {
			logger.Info("signal received, stopping sweep")
			cancel()
		}
	}()

	logger.Info("starting sweep", "ranges", len(preset.Ranges), "mode", sinkMode, "fftSize", state.FFT.N)
	if err := state.Start(*sweepsOpt); err != nil {
		return err
	}

	<-ctx.Done()
	if err := state.Stop(); err != nil {
		return err
	}
	if err := radio.Close(dev); err != nil {
		logger.Error("radio close failed", "err", err)
	}
	return state.Close()
}

func modeName(s string) string {
	switch s {
	case "binary":
		return "binary-record"
	case "ifft":
		return "ifft-stream"
	case "callback":
		return "callback-only"
	default:
		return "text-record"
	}
}

func parseRangeMHz(s string) (config.RangeMHz, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return config.RangeMHz{}, fmt.Errorf("invalid range %q, want minMHz:maxMHz", s)
	}
	minMHz, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return config.RangeMHz{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	maxMHz, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return config.RangeMHz{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return config.RangeMHz{MinMHz: uint16(minMHz), MaxMHz: uint16(maxMHz)}, nil
}

func parseTones(s string) ([]simradio.Tone, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var tones []simradio.Tone
	for _, part := range strings.Split(s, ",") {
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid tone %q, want freqHz:powerDb", part)
		}
		freq, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tone %q: %w", part, err)
		}
		power, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tone %q: %w", part, err)
		}
		tones = append(tones, simradio.Tone{FreqHz: freq, PowerDb: power})
	}
	return tones, nil
}

func main() {
	if err := wbsweep(); err != nil {
		charmlog.Fatal(err)
	}
}
