// Package trackbuf implements the write-side bit appender of §4.3 of the
// specification: the counterpart of bitstream.RawStream, generalizing the
// teacher's mfm.Writer (writeHalfBit/writeBit/writeByte/getData) to accept
// an explicit track.Mode and track.Speed per call instead of being
// hardwired to plain MFM.
package trackbuf

import "github.com/sergev/amigatrk/track"

// Buffer appends raw bits under a caller-chosen encoding mode. Speed
// carries a per-cell timing hint through to downstream flux generation
// (§4.3); it has no effect on the bits this package produces.
type Buffer struct {
	buffer      []byte
	bitPos      int
	maxBits     int
	lastDataBit int // MFM clocking state, carried across calls like mfm.Writer's
}

// New creates a track buffer that refuses to grow past maxBits raw bits.
// maxBits of 0 means unbounded.
func New(maxBits int) *Buffer {
	return &Buffer{
		buffer:  make([]byte, 0, 1024),
		maxBits: maxBits,
	}
}

func (b *Buffer) ensure(n int) {
	needed := (b.bitPos + n + 7) / 8
	for needed > len(b.buffer) {
		b.buffer = append(b.buffer, 0)
	}
}

func (b *Buffer) writeRawBit(bit int) {
	if b.maxBits > 0 && b.bitPos >= b.maxBits {
		return
	}
	b.ensure(1)
	if bit != 0 {
		byteIdx := b.bitPos / 8
		bitIdx := 7 - (b.bitPos % 8)
		b.buffer[byteIdx] |= 1 << uint(bitIdx)
	}
	b.bitPos++
}

// writeMFMDataBit appends one standard-MFM-encoded data bit (a clock
// half-bit followed by a data half-bit), carrying clocking state across
// calls the same way mfm.Writer.writeBit does.
func (b *Buffer) writeMFMDataBit(dataBit int) {
	var clockBit int
	if dataBit != 0 {
		clockBit = 0
	} else {
		clockBit = b.lastDataBit ^ 1
	}
	b.writeRawBit(clockBit)
	b.writeRawBit(dataBit)
	b.lastDataBit = dataBit
}

// Bits appends the low n bits of value (1 <= n <= 32) under mode.
// track.ModeRaw writes bits verbatim with no clock insertion (used for
// sync words). Every other mode MFM-encodes each bit with the standard
// clock rule; track.ModeMFMEvenOdd is not meaningful at this granularity
// and panics — use Bytes for interleaved payloads.
func (b *Buffer) Bits(speed track.Speed, mode track.Mode, n int, value uint32) {
	_ = speed
	if n < 1 || n > 32 {
		panic("trackbuf: Bits: n out of range")
	}
	if mode == track.ModeMFMEvenOdd {
		panic("trackbuf: Bits: mfm_even_odd requires byte granularity, use Bytes")
	}
	for i := n - 1; i >= 0; i-- {
		bit := int((value >> uint(i)) & 1)
		if mode == track.ModeRaw {
			b.writeRawBit(bit)
		} else {
			b.writeMFMDataBit(bit)
		}
	}
}

// Bytes appends n bytes from src under mode. For track.ModeMFMEvenOdd, n
// data bytes expand to 4n raw bytes (two interleaved, independently
// MFM-encoded n-byte halves); every other mode expands n bytes to 2n raw
// bytes (or n raw bytes for track.ModeRaw).
func (b *Buffer) Bytes(speed track.Speed, mode track.Mode, n int, src []byte) {
	_ = speed
	if len(src) < n {
		panic("trackbuf: Bytes: short source")
	}
	switch mode {
	case track.ModeRaw:
		for i := 0; i < n; i++ {
			b.writeRawByte(src[i])
		}
	case track.ModeMFMAll, track.ModeMFM, track.ModeMFMOdd, track.ModeMFMEven:
		for i := 0; i < n; i++ {
			b.writeMFMByte(src[i])
		}
	case track.ModeMFMEvenOdd:
		even := make([]byte, n)
		odd := make([]byte, n)
		for i := 0; i < n; i++ {
			even[i], odd[i] = deinterleave(src[i])
		}
		for i := 0; i < n; i++ {
			b.writeMFMByte(even[i])
		}
		for i := 0; i < n; i++ {
			b.writeMFMByte(odd[i])
		}
	default:
		panic("trackbuf: Bytes: unknown mode")
	}
}

func (b *Buffer) writeRawByte(v byte) {
	for i := 7; i >= 0; i-- {
		b.writeRawBit(int((v >> uint(i)) & 1))
	}
}

func (b *Buffer) writeMFMByte(v byte) {
	for i := 7; i >= 0; i-- {
		b.writeMFMDataBit(int((v >> uint(i)) & 1))
	}
}

// deinterleave splits a data byte into its even/odd bit-plane halves:
// bit 2k of v goes to even's bit k, bit 2k+1 goes to odd's bit k.
func deinterleave(v byte) (even, odd byte) {
	for k := 0; k < 4; k++ {
		eBit := (v >> uint(2*k)) & 1
		oBit := (v >> uint(2*k+1)) & 1
		even |= eBit << uint(k)
		odd |= oBit << uint(k)
	}
	return even, odd
}

// Data returns the bytes written so far, trimmed to the bits actually
// consumed.
func (b *Buffer) Data() []byte {
	n := (b.bitPos + 7) / 8
	if n < len(b.buffer) {
		return b.buffer[:n]
	}
	return b.buffer
}

// Len reports the number of raw bits appended so far.
func (b *Buffer) Len() int {
	return b.bitPos
}
