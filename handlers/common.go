// Package handlers implements the concrete track-type handlers named in
// §6 of the specification: the two R-Type data-track variants (§4.4.a,
// §4.4.b) and the long-track protection family (§4.4.c). Each file's
// init() registers its handler with the package handler registry, in file
// name order; handler.Seal then moves empty_longtrack to the end of the
// recognition order so it only matches when every stronger pattern has
// already failed (§4.5).
package handlers

import (
	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/mfm"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// scanSync advances s bit by bit until its rolling window's low nbits
// bits equal sync, or the stream ends. This is the decode policy shared
// by every handler (§4.4): sync words are raw patterns, scanned one raw
// bit at a time so sync-drift (up to 15 leading garbage bits, §8 item 4)
// never prevents recognition.
func scanSync(s *bitstream.RawStream, sync uint32, nbits int) bool {
	mask := uint32(1)<<uint(nbits) - 1
	for {
		_, end := s.NextBit()
		if end {
			return false
		}
		if s.Window()&mask == sync {
			return true
		}
	}
}

// decodeMFMByteFromRaw16 strips clock bits from one already-consumed
// 16-bit raw MFM word, yielding the 8 data bits it carries.
func decodeMFMByteFromRaw16(raw uint32) byte {
	return byte(mfm.DecodeBits(track.ModeMFMAll, raw))
}

// readRawBytes reads n raw bytes (8n raw bits) directly off the stream,
// with no MFM interpretation; callers either use the bytes verbatim (as
// sevencities_longtrack does with its captured payload) or hand them to
// mfm.DecodeBytes for MFM decoding (as the R-Type handlers do).
func readRawBytes(s *bitstream.RawStream, n int) ([]byte, bool) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		v, end := s.NextBits(8)
		if end {
			return nil, false
		}
		out[i] = byte(v)
	}
	return out, true
}

// checkSequence reads n successive 16-bit MFM words and requires every
// one to decode to filler. It stops and returns false as soon as one
// doesn't match, or the stream ends (§4.4.c step 2).
func checkSequence(s *bitstream.RawStream, n int, filler byte) bool {
	for i := 0; i < n; i++ {
		raw, end := s.NextBits(16)
		if end {
			return false
		}
		if decodeMFMByteFromRaw16(raw) != filler {
			return false
		}
	}
	return true
}

// checkLength advances to the next index pulse and requires the
// just-finished revolution to be at least min raw bits long. Unlike a
// sync or sequence mismatch, a length-check failure is fatal to the
// calling handler's scan (§4.4.c step 3, §7): the caller must abort
// rather than keep scanning from here.
func checkLength(s *bitstream.RawStream, min int) bool {
	s.NextIndex()
	return s.TrackLenBC() >= min
}

// writeSyncBuf appends a raw (non-MFM) sync pattern of the given bit
// width.
func writeSyncBuf(b *trackbuf.Buffer, sync uint32, nbits int) {
	b.Bits(track.SpeedDD, track.ModeRaw, nbits, sync)
}

// fillToTotalBits keeps appending one MFM-encoded filler byte at a time
// until the buffer reaches totalBits raw bits (§4.4.c step 4: total_bits
// is usually longer than the checked minimum, to guarantee playback
// comfortably exceeds the length gate).
func fillToTotalBits(b *trackbuf.Buffer, filler byte, totalBits int) {
	for b.Len() < totalBits {
		b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{filler})
	}
}
