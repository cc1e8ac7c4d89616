package container

import (
	"testing"

	"github.com/sergev/amigatrk/bitstream"
	_ "github.com/sergev/amigatrk/handlers"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

func emptyLongtrackStream(t *testing.T) *bitstream.RawStream {
	t.Helper()
	b := trackbuf.New(0)
	for b.Len() < 110000 {
		b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{0x00})
	}
	return bitstream.New(b.Data(), b.Len())
}

func TestDecodeAutoRecognizesEmptyLongtrack(t *testing.T) {
	d := NewDisk(1)
	tag, ok := d.DecodeAuto(0, emptyLongtrackStream(t))
	if !ok {
		t.Fatal("DecodeAuto: ok = false, want true")
	}
	if tag != track.EmptyLongtrack {
		t.Errorf("tag = %v, want EmptyLongtrack", tag)
	}
	if d.Tracks[0] == nil {
		t.Fatal("Tracks[0] not populated")
	}
}

func TestDecodeAutoOutOfRangeTrack(t *testing.T) {
	d := NewDisk(1)
	if _, ok := d.DecodeAuto(5, emptyLongtrackStream(t)); ok {
		t.Error("DecodeAuto with out-of-range tracknr should fail")
	}
}

func TestEncodeMFMRoundTripsDecodedEmptyLongtrack(t *testing.T) {
	d := NewDisk(1)
	if _, ok := d.DecodeAuto(0, emptyLongtrackStream(t)); !ok {
		t.Fatal("DecodeAuto failed")
	}

	b := trackbuf.New(0)
	if !d.EncodeMFM(0, b) {
		t.Fatal("EncodeMFM returned false")
	}
	if b.Len() == 0 {
		t.Error("EncodeMFM produced an empty buffer")
	}
}

func TestEncodeMFMWithoutDecodeFails(t *testing.T) {
	d := NewDisk(1)
	b := trackbuf.New(0)
	if d.EncodeMFM(0, b) {
		t.Error("EncodeMFM should fail before any track has been decoded")
	}
}

func TestDecodeMFMByTagMismatch(t *testing.T) {
	d := NewDisk(1)
	// A stream of all zeroes does not contain rtype_a's sync, so an
	// explicit tag request must fail cleanly rather than panic.
	b := trackbuf.New(0)
	for b.Len() < 2000 {
		b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{0x00})
	}
	s := bitstream.New(b.Data(), b.Len())
	if d.DecodeMFM(0, s, track.RTypeA) {
		t.Error("DecodeMFM(rtype_a) unexpectedly succeeded on an all-zero stream")
	}
}
