// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// File is a file-like Sink that writes the text-record, binary-record,
// and ifft-stream formats described in the external interfaces section
// of the spec to an io.Writer. It does not flush; ownership of the
// underlying handle stays with the caller.
type File struct {
	W io.Writer

	// buf is reused across WriteBinary and WriteIFFT calls to avoid
	// per-call allocation on the hot path, matching the persistent
	// scratch buffer pattern used elsewhere for callback-path writes.
	buf []byte
}

// NewFile wraps w in a File sink.
func NewFile(w io.Writer) *File {
	return &File{W: w, buf: make([]byte, 256)}
}

// WriteText writes one CSV line:
// "YYYY-MM-DD, HH:MM:SS.uuuuuu, hz_low, hz_high, bin_width, N, p0, p1, ..."
func (f *File) WriteText(rec TextRecord) error {
	line := fmt.Sprintf(
		"%s, %s, %d, %d, %.2f, %d",
		rec.Timestamp.Format("2006-01-02"),
		rec.Timestamp.Format("15:04:05.000000"),
		rec.HzLow, rec.HzHigh, rec.BinWidth, rec.N,
	)
	for _, p := range rec.Powers {
		line += fmt.Sprintf(", %.2f", p)
	}
	line += "\n"
	_, err := io.WriteString(f.W, line)
	return err
}

// WriteBinary writes one length-prefixed record: u32 record_length,
// u64 hz_low, u64 hz_high, then little-endian float32 powers.
func (f *File) WriteBinary(rec BinaryRecord) error {
	need := 4 + 16 + 4*len(rec.Powers)
	if cap(f.buf) < need {
		f.buf = make([]byte, need)
	}
	buf := f.buf[:need]

	binary.LittleEndian.PutUint32(buf[0:4], rec.RecordLength())
	binary.LittleEndian.PutUint64(buf[4:12], rec.HzLow)
	binary.LittleEndian.PutUint64(buf[12:20], rec.HzHigh)
	bi := 20
	for _, p := range rec.Powers {
		binary.LittleEndian.PutUint32(buf[bi:], math.Float32bits(p))
		bi += 4
	}
	_, err := f.W.Write(buf)
	return err
}

// WriteIFFT writes 2*len(samples) little-endian float32 values,
// interleaved real then imaginary, for one fully reassembled sweep.
func (f *File) WriteIFFT(samples []complex64) error {
	need := 8 * len(samples)
	if cap(f.buf) < need {
		f.buf = make([]byte, need)
	}
	buf := f.buf[:need]
	bi := 0
	for _, s := range samples {
		binary.LittleEndian.PutUint32(buf[bi:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(buf[bi+4:], math.Float32bits(imag(s)))
		bi += 8
	}
	_, err := f.W.Write(buf)
	return err
}
