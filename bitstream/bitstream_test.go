package bitstream

import (
	"testing"

	"github.com/sergev/amigatrk/mfm"
)

func TestNextBitSequence(t *testing.T) {
	// 0xA5 = 1010 0101
	s := New([]byte{0xa5}, 8)
	want := []byte{1, 0, 1, 0, 0, 1, 0, 1}
	for i, w := range want {
		bit, end := s.NextBit()
		if end {
			t.Fatalf("bit %d: unexpected end", i)
		}
		if bit != w {
			t.Errorf("bit %d = %d, want %d", i, bit, w)
		}
	}
	if _, end := s.NextBit(); !end {
		t.Error("expected end after consuming all 8 bits")
	}
}

func TestNextBitsWindow(t *testing.T) {
	s := New([]byte{0x12, 0x34}, 16)
	v, end := s.NextBits(16)
	if end {
		t.Fatal("unexpected end")
	}
	if v != 0x1234 {
		t.Errorf("NextBits(16) = %#x, want %#x", v, 0x1234)
	}
	if s.Window() != 0x1234 {
		t.Errorf("Window() = %#x, want %#x", s.Window(), 0x1234)
	}
}

func TestNextBytes(t *testing.T) {
	s := New([]byte{0xde, 0xad, 0xbe, 0xef}, 32)
	dst := make([]byte, 4)
	if end := s.NextBytes(dst); end {
		t.Fatal("unexpected end")
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, dst[i], want[i])
		}
	}
}

func TestNextIndexWraps(t *testing.T) {
	s := New([]byte{0xff, 0xff}, 16)
	s.NextBits(10)
	s.NextIndex()
	if got := s.TrackLenBC(); got != 16 {
		t.Errorf("TrackLenBC() = %d, want 16", got)
	}
	if got := s.IndexOffsetBC(); got != 0 {
		t.Errorf("IndexOffsetBC() after NextIndex = %d, want 0", got)
	}
	// cursor wrapped, stream is readable again from the start
	if _, end := s.NextBit(); end {
		t.Error("stream should not report end immediately after NextIndex")
	}
}

func TestStartCRCMatchesCodecCRC(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	s := New(data, 32)
	s.StartCRC()
	dst := make([]byte, 4)
	if end := s.NextBytes(dst); end {
		t.Fatal("unexpected end")
	}
	want := mfm.CRC16CCITT(0, data)
	if got := s.CRC16(); got != want {
		t.Errorf("CRC16() = %#x, want %#x", got, want)
	}
}

func TestRewindResetsCursor(t *testing.T) {
	s := New([]byte{0xa5}, 8)
	s.NextBits(4)
	s.Rewind()
	if s.IndexOffsetBC() != 0 {
		t.Errorf("IndexOffsetBC() after Rewind = %d, want 0", s.IndexOffsetBC())
	}
	v, end := s.NextBits(8)
	if end {
		t.Fatal("unexpected end after Rewind")
	}
	if v != 0xa5 {
		t.Errorf("NextBits(8) after Rewind = %#x, want %#x", v, 0xa5)
	}
}

func TestAtEnd(t *testing.T) {
	s := New([]byte{0xff}, 4)
	if s.AtEnd() {
		t.Error("AtEnd() true before consuming any bits")
	}
	s.NextBits(4)
	if !s.AtEnd() {
		t.Error("AtEnd() false after consuming all totalBits bits")
	}
}
