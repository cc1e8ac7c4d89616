package trackbuf

import (
	"bytes"
	"testing"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/mfm"
	"github.com/sergev/amigatrk/track"
)

func TestBitsRawRoundTripsThroughBitstream(t *testing.T) {
	b := New(0)
	b.Bits(track.SpeedDD, track.ModeRaw, 16, 0x4489)
	s := bitstream.New(b.Data(), b.Len())
	got, end := s.NextBits(16)
	if end {
		t.Fatal("unexpected end")
	}
	if got != 0x4489 {
		t.Errorf("NextBits(16) = %#x, want %#x", got, 0x4489)
	}
}

func TestBytesEvenOddRoundTripsThroughMFMDecode(t *testing.T) {
	payload := []byte{0x12, 0x34, 0x56, 0x78}
	b := New(0)
	b.Bytes(track.SpeedDD, track.ModeMFMEvenOdd, len(payload), payload)

	s := bitstream.New(b.Data(), b.Len())
	raw := make([]byte, 4*len(payload))
	if end := s.NextBytes(raw); end {
		t.Fatal("unexpected end")
	}
	decoded := mfm.DecodeBytes(track.ModeMFMEvenOdd, len(payload), raw)
	if !bytes.Equal(decoded, payload) {
		t.Errorf("decoded = %x, want %x", decoded, payload)
	}
}

func TestBufferRespectsMaxBits(t *testing.T) {
	b := New(8)
	b.Bits(track.SpeedDD, track.ModeRaw, 8, 0xff)
	b.Bits(track.SpeedDD, track.ModeRaw, 8, 0xff) // should be silently dropped
	if got := b.Len(); got != 8 {
		t.Errorf("Len() = %d, want 8 (writes past maxBits must be no-ops)", got)
	}
}

func TestBitsPanicsOnEvenOddGranularity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic: mfm_even_odd is not meaningful at bit granularity")
		}
	}()
	New(0).Bits(track.SpeedDD, track.ModeMFMEvenOdd, 8, 0)
}
