package mfm

import (
	"bytes"
	"testing"

	"github.com/sergev/amigatrk/track"
)

func TestEncodeDecodeBytesRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		mode track.Mode
		data []byte
	}{
		{name: "All/SingleByte", mode: track.ModeMFMAll, data: []byte{0x42}},
		{name: "All/Mixed", mode: track.ModeMFMAll, data: []byte{0x00, 0xff, 0xaa, 0x55}},
		{name: "Odd/Mixed", mode: track.ModeMFMOdd, data: []byte{0x12, 0x34, 0x56}},
		{name: "Even/Mixed", mode: track.ModeMFMEven, data: []byte{0x12, 0x34, 0x56}},
		{name: "EvenOdd/Mixed", mode: track.ModeMFMEvenOdd, data: []byte{0x12, 0x34, 0x56, 0x78}},
		{name: "EvenOdd/AllZeros", mode: track.ModeMFMEvenOdd, data: []byte{0x00, 0x00}},
		{name: "Raw/Passthrough", mode: track.ModeRaw, data: []byte{0xde, 0xad}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeBytes(tc.mode, tc.data)
			decoded := DecodeBytes(tc.mode, len(tc.data), encoded)
			if !bytes.Equal(decoded, tc.data) {
				t.Errorf("round trip mismatch: got %x, want %x", decoded, tc.data)
			}
		})
	}
}

func TestEncodeDecodeBitsRoundTrip(t *testing.T) {
	for _, mode := range []track.Mode{track.ModeMFM, track.ModeMFMAll, track.ModeMFMOdd, track.ModeMFMEven} {
		for _, value := range []uint32{0x00, 0xff, 0x42, 0xaa, 0x55} {
			word := EncodeBits(mode, value)
			got := DecodeBits(mode, word)
			if got != value {
				t.Errorf("mode %v: DecodeBits(EncodeBits(%#x))=%#x, want %#x", mode, value, got, value)
			}
		}
	}
}

func TestDecodeBitsMatchesDecodeBytes(t *testing.T) {
	encoded := EncodeBytes(track.ModeMFMAll, []byte{0x5a})
	word := uint32(encoded[0])<<8 | uint32(encoded[1])
	got := DecodeBits(track.ModeMFM, word)
	want := uint32(DecodeBytes(track.ModeMFMAll, 1, encoded)[0])
	if got != want {
		t.Errorf("DecodeBits = %#x, want %#x (from DecodeBytes)", got, want)
	}
}

func TestInterleaveDeinterleaveRoundTrip(t *testing.T) {
	for even := 0; even < 16; even++ {
		for odd := 0; odd < 16; odd++ {
			b := interleave(byte(even), byte(odd))
			gotEven, gotOdd := deinterleave(b)
			if int(gotEven) != even || int(gotOdd) != odd {
				t.Errorf("interleave(%d,%d)=%#x, deinterleave=(%d,%d)", even, odd, b, gotEven, gotOdd)
			}
		}
	}
}

func TestAmigaDOSChecksum(t *testing.T) {
	testCases := []struct {
		name string
		buf  []byte
		want uint32
	}{
		{name: "AllZeros", buf: []byte{0, 0, 0, 0, 0, 0, 0, 0}, want: 0},
		{name: "SingleWord", buf: []byte{0x12, 0x34, 0x56, 0x78}, want: 0x12345678},
		{name: "TwoWordsXOR", buf: []byte{0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01}, want: 0xfffffffe},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AmigaDOSChecksum(tc.buf)
			if got != tc.want {
				t.Errorf("AmigaDOSChecksum(%x) = %#x, want %#x", tc.buf, got, tc.want)
			}
		})
	}
}

func TestAmigaDOSChecksumPanicsOnOddLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for length not a multiple of 4")
		}
	}()
	AmigaDOSChecksum([]byte{1, 2, 3})
}

func TestCRC16CCITTKnownVector(t *testing.T) {
	// CRC-16/CCITT-FALSE of "123456789" is the commonly-cited check value.
	got := CRC16CCITT(0xffff, []byte("123456789"))
	const want = 0x29b1
	if got != want {
		t.Errorf("CRC16CCITT(0xffff, \"123456789\") = %#x, want %#x", got, want)
	}
}
