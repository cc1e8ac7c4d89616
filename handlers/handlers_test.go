package handlers

import (
	"bytes"
	"testing"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/handler"
	"github.com/sergev/amigatrk/mfm"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// S1 — R-Type A roundtrip.
func TestRTypeARoundTrip(t *testing.T) {
	payload := make([]byte, rtypeAPayload)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	info := &track.Info{Type: track.RTypeA, Dat: payload}

	b := trackbuf.New(0)
	encodeRTypeA(info, b)

	s := bitstream.New(b.Data(), b.Len())
	got, ok := handler.MustGet(track.RTypeA).DecodeMFM(0, s)
	if !ok {
		t.Fatal("decodeRTypeA: ok = false, want true")
	}
	if !bytes.Equal(got.Dat, payload) {
		t.Error("decoded payload does not match original")
	}
	if got.ValidSectors != 1 {
		t.Errorf("ValidSectors = %d, want 1", got.ValidSectors)
	}
}

// S2 — R-Type B checksum trailer: an all-zero payload's AmigaDOS checksum
// is 0, which masks to 0xaaaaaaaa under variant B's convention.
func TestRTypeBZeroPayloadChecksum(t *testing.T) {
	payload := make([]byte, rtypeBPayload)
	info := &track.Info{Type: track.RTypeB, Dat: payload}

	b := trackbuf.New(0)
	encodeRTypeB(info, b)

	s := bitstream.New(b.Data(), b.Len())
	got, ok := decodeRTypeB(s)
	if !ok {
		t.Fatal("decodeRTypeB: ok = false, want true")
	}
	if !bytes.Equal(got.Dat, payload) {
		t.Error("decoded payload does not match original")
	}
	if got.TotalBits != rtypeBTotalBits {
		t.Errorf("TotalBits = %d, want %d", got.TotalBits, rtypeBTotalBits)
	}

	checksum := mfm.AmigaDOSChecksum(payload)&rtypeBChecksumAnd | rtypeBChecksumOr
	const want = 0xaaaaaaaa
	if checksum != want {
		t.Errorf("masked checksum = %#x, want %#x", checksum, want)
	}
}

// S5 — Seven Cities CRC.
func TestSevenCitiesRecognizesKnownPayload(t *testing.T) {
	payload := make([]byte, sevenCitiesPayloadLen)
	// Search for a payload whose CRC matches the fixture constant: try
	// zero-filled first, then perturb the first two bytes until it matches.
	// Over a fixed-length message the CRC-16 is a one-to-one function of
	// any 16 consecutive bits, so exactly one setting of those bytes matches.
	found := false
	for v := 0; v < 0x10000 && !found; v++ {
		payload[0], payload[1] = byte(v>>8), byte(v)
		found = mfm.CRC16CCITT(0, payload) == sevenCitiesWantCRC
	}
	if !found {
		t.Fatal("could not find a payload matching the fixture CRC")
	}

	info := &track.Info{Type: track.SevenCitiesLongtrack, Dat: payload}
	b := trackbuf.New(0)
	encodeSevenCities(info, b)

	s := bitstream.New(b.Data(), b.Len())
	got, ok := decodeSevenCities(s)
	if !ok {
		t.Fatal("decodeSevenCities: ok = false, want true")
	}
	if !bytes.Equal(got.Dat, payload) {
		t.Error("decoded payload does not match original")
	}
	if got.TotalBits != sevenCitiesTotalBits {
		t.Errorf("TotalBits = %d, want %d", got.TotalBits, sevenCitiesTotalBits)
	}
}

// S6 — Ambiguity: an all-zero stream must be rejected by gremlin_longtrack
// (no 0x41244124 sync present) and accepted by empty_longtrack.
func TestEmptyLongtrackVsGremlinAmbiguity(t *testing.T) {
	b := trackbuf.New(0)
	for b.Len() < 110000 {
		b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{0x00})
	}

	s := bitstream.New(b.Data(), b.Len())
	if _, ok := decodeGremlin(s); ok {
		t.Error("gremlin_longtrack matched an all-zero stream, want rejection")
	}

	s2 := bitstream.New(b.Data(), b.Len())
	info, ok := decodeEmpty(s2)
	if !ok {
		t.Fatal("empty_longtrack: ok = false, want true")
	}
	if info.Type != track.EmptyLongtrack {
		t.Errorf("info.Type = %v, want EmptyLongtrack", info.Type)
	}
}

func decodeGremlin(s *bitstream.RawStream) (*track.Info, bool) {
	return handler.MustGet(track.GremlinLongtrack).DecodeMFM(0, s)
}

// S3/S4 — PROTEC non-default filler and its length gate.
func TestProtecLongtrackNonDefaultFiller(t *testing.T) {
	spec := longtrackSpec{
		tag: track.ProtecLongtrack, sync: 0x4454, syncBits: 16,
		variableFiller: true, seqCount: 1000, minBits: 107200, totalBits: 110000,
	}
	info := &track.Info{Type: track.ProtecLongtrack, Dat: []byte{0x44}}
	b := trackbuf.New(0)
	encodeLongtrack(spec, info, b)

	s := bitstream.New(b.Data(), b.Len())
	got, ok := decodeLongtrack(spec, s)
	if !ok {
		t.Fatal("decodeLongtrack(protec): ok = false, want true")
	}
	if got.Dat[0] != 0x44 {
		t.Errorf("recovered filler = %#x, want 0x44", got.Dat[0])
	}
	if got.TotalBits != 110000 {
		t.Errorf("TotalBits = %d, want 110000", got.TotalBits)
	}
}

func TestProtecLongtrackLengthGateRejectsShortTrack(t *testing.T) {
	spec := longtrackSpec{
		tag: track.ProtecLongtrack, sync: 0x4454, syncBits: 16,
		variableFiller: true, seqCount: 1000, minBits: 107200, totalBits: 110000,
	}
	info := &track.Info{Type: track.ProtecLongtrack, Dat: []byte{0x44}}
	b := trackbuf.New(0)
	encodeLongtrack(spec, info, b)

	// Truncate well below minBits.
	data := b.Data()
	shortStream := bitstream.New(data, 106000)

	if _, ok := decodeLongtrack(spec, shortStream); ok {
		t.Error("decodeLongtrack(protec) accepted a track shorter than minBits")
	}
}
