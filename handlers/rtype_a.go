package handlers

import (
	"encoding/binary"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/handler"
	"github.com/sergev/amigatrk/mfm"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// R-Type variant A (§4.4.a): a single 5968-byte sector. Sync 0x9521 (raw),
// one mfm_all filler zero byte, a 32-bit mfm_odd-encoded AmigaDOS-style
// checksum, then the payload itself in mfm_even_odd layout.
const (
	rtypeASync    = 0x9521
	rtypeASyncBit = 16
	rtypeAPayload = 5968
)

func decodeRTypeA(s *bitstream.RawStream) (*track.Info, bool) {
	for {
		if !scanSync(s, rtypeASync, rtypeASyncBit) {
			return nil, false
		}
		syncStart := s.IndexOffsetBC() - rtypeASyncBit

		fillerRaw, end := s.NextBits(16)
		if end {
			return nil, false
		}
		if decodeMFMByteFromRaw16(fillerRaw) != 0 {
			continue
		}

		checksumRaw, ok := readRawBytes(s, 8)
		if !ok {
			return nil, false
		}
		decodedChecksum := mfm.DecodeBytes(track.ModeMFMOdd, 4, checksumRaw)
		wantChecksum := binary.BigEndian.Uint32(decodedChecksum)

		payloadRaw, ok := readRawBytes(s, 4*rtypeAPayload)
		if !ok {
			return nil, false
		}
		payload := mfm.DecodeBytes(track.ModeMFMEvenOdd, rtypeAPayload, payloadRaw)

		if mfm.AmigaDOSChecksum(payload) != wantChecksum {
			continue
		}

		return &track.Info{
			Type:           track.RTypeA,
			Dat:            payload,
			Len:            len(payload),
			NrSectors:      1,
			BytesPerSector: rtypeAPayload,
			ValidSectors:   1,
			DataBitoff:     syncStart,
		}, true
	}
}

func encodeRTypeA(info *track.Info, b *trackbuf.Buffer) {
	writeSyncBuf(b, rtypeASync, rtypeASyncBit)
	b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{0})

	checksum := mfm.AmigaDOSChecksum(info.Dat)
	var checksumBuf [4]byte
	binary.BigEndian.PutUint32(checksumBuf[:], checksum)
	b.Bytes(track.SpeedDD, track.ModeMFMOdd, 4, checksumBuf[:])

	b.Bytes(track.SpeedDD, track.ModeMFMEvenOdd, rtypeAPayload, info.Dat)
}

func init() {
	handler.Register(handler.Handler{
		Tag:            track.RTypeA,
		BytesPerSector: rtypeAPayload,
		NrSectors:      1,
		WriteMFM: func(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
			return decodeRTypeA(s)
		},
		ReadMFM: func(tracknr int, info *track.Info, b *trackbuf.Buffer) {
			encodeRTypeA(info, b)
		},
	})
}
