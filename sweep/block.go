// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sweep

import "encoding/binary"

// headerSize is the length, in bytes, of a transfer block's header:
// two magic bytes followed by a little-endian u64 frequency in Hz.
const headerSize = 10

var blockMagic = [2]byte{0x7F, 0x7F}

// blockHeader is the decoded form of a block's leading 10 bytes.
type blockHeader struct {
	freqHz uint64
	ok     bool
}

// parseBlockHeader reads a block's header from the front of block. ok
// is false when block is too short or the magic bytes don't match,
// meaning the block should be skipped without further processing.
func parseBlockHeader(block []byte) blockHeader {
	if len(block) < headerSize {
		return blockHeader{}
	}
	if block[0] != blockMagic[0] || block[1] != blockMagic[1] {
		return blockHeader{}
	}
	return blockHeader{freqHz: binary.LittleEndian.Uint64(block[2:10]), ok: true}
}
