// Package bitstream implements the raw-bit read-side cursor the
// specification's handlers scan: §4.1 of the specification. It is a
// forward-only cursor over one revolution's raw bits, generalizing the
// teacher's mfm.Reader.readHalfBit/scanIBMPC rolling-history technique from
// "two raw bits decode into one data bit" to "one raw bit shifts into a
// 32-bit rolling window" — sync words in this specification are raw bit
// patterns that must survive without MFM clock/data pairing, so the window
// has to operate at raw-bit granularity, not post-decode data-bit
// granularity.
package bitstream

import "github.com/sergev/amigatrk/mfm"

// RawStream is a read-only cursor over one revolution of raw bits.
// Observable state matches §3 of the specification: a 32-bit rolling
// shift register (window), a running index offset, the just-finished
// revolution's bit length, and a running CRC-16/CCITT.
type RawStream struct {
	bits      []byte // bit-packed, MSB-first, one revolution
	totalBits int    // number of valid raw bits in bits

	cursor int // absolute bit position, wraps modulo totalBits on NextIndex
	window uint32

	indexOffsetBC int // raw bits consumed since the last index pulse
	trackLenBC    int // bit length of the most recently finished revolution

	crcActive bool
	crc       uint16
	crcByte   byte
	crcBits   int
}

// New creates a raw-bit stream over one revolution's worth of bits.
// totalBits must not exceed len(revolution)*8.
func New(revolution []byte, totalBits int) *RawStream {
	if totalBits > len(revolution)*8 {
		panic("bitstream: totalBits exceeds buffer capacity")
	}
	return &RawStream{
		bits:      revolution,
		totalBits: totalBits,
	}
}

// NextBit consumes one raw bit into the rolling window. end is true (and
// bit is 0) once the revolution's bits are exhausted.
func (s *RawStream) NextBit() (bit byte, end bool) {
	if s.cursor >= s.totalBits {
		return 0, true
	}
	byteIdx := s.cursor / 8
	bitIdx := 7 - (s.cursor % 8)
	bit = (s.bits[byteIdx] >> uint(bitIdx)) & 1
	s.cursor++
	s.indexOffsetBC++
	s.window = (s.window << 1) | uint32(bit)

	if s.crcActive {
		s.crcByte = (s.crcByte << 1) | bit
		s.crcBits++
		if s.crcBits == 8 {
			s.crc = mfm.CRC16CCITTByte(s.crc, s.crcByte)
			s.crcByte = 0
			s.crcBits = 0
		}
	}
	return bit, false
}

// NextBits consumes n (1..32) raw bits; the newest occupy the low n
// positions of the returned value.
func (s *RawStream) NextBits(n int) (value uint32, end bool) {
	if n < 1 || n > 32 {
		panic("bitstream: NextBits: n out of range")
	}
	for i := 0; i < n; i++ {
		bit, end := s.NextBit()
		if end {
			return value, true
		}
		value = (value << 1) | uint32(bit)
	}
	return value, false
}

// NextBytes consumes len(dst) bytes (8*len(dst) raw bits); the caller is
// responsible for being byte-aligned beforehand (e.g. via a prior NextBits
// call to a byte boundary).
func (s *RawStream) NextBytes(dst []byte) (end bool) {
	for i := range dst {
		v, end := s.NextBits(8)
		if end {
			return true
		}
		dst[i] = byte(v)
	}
	return false
}

// Window returns the current 32-bit rolling shift register without
// consuming further bits.
func (s *RawStream) Window() uint32 {
	return s.window
}

// NextIndex advances the cursor to the start of the next revolution
// (wrapping past the end of the buffer), setting TrackLenBC to the number
// of raw bits in the just-finished revolution and resetting IndexOffsetBC.
func (s *RawStream) NextIndex() {
	s.trackLenBC = s.indexOffsetBC + (s.totalBits - s.cursor)
	s.cursor = 0
	s.indexOffsetBC = 0
}

// StartCRC resets the running CRC-16/CCITT; subsequently consumed bits
// accumulate into it, byte at a time.
func (s *RawStream) StartCRC() {
	s.crcActive = true
	s.crc = 0
	s.crcByte = 0
	s.crcBits = 0
}

// CRC16 samples the running CRC-16/CCITT accumulated since StartCRC.
func (s *RawStream) CRC16() uint16 {
	return s.crc
}

// IndexOffsetBC returns the raw-bit count since the last index pulse.
func (s *RawStream) IndexOffsetBC() int {
	return s.indexOffsetBC
}

// TrackLenBC returns the raw-bit length of the most recently finished
// revolution (valid after at least one NextIndex call).
func (s *RawStream) TrackLenBC() int {
	return s.trackLenBC
}

// AtEnd reports whether the cursor has consumed every bit this revolution.
func (s *RawStream) AtEnd() bool {
	return s.cursor >= s.totalBits
}

// Rewind resets the cursor to the start of the revolution, as if freshly
// constructed by New. The registry's Recognize uses this to give each
// candidate handler its own full pass over the stream (§5: "one stream
// instance is per one decode operation").
func (s *RawStream) Rewind() {
	s.cursor = 0
	s.window = 0
	s.indexOffsetBC = 0
	s.trackLenBC = 0
	s.crcActive = false
	s.crc = 0
	s.crcByte = 0
	s.crcBits = 0
}
