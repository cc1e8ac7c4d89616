package handlers

import (
	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/handler"
	"github.com/sergev/amigatrk/mfm"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// R-Type variant B (§4.4.b): same sync and filler as variant A, but the
// 6552-byte payload is split into 1638 four-byte longwords, each encoded
// independently in mfm_even_odd (not the single whole-payload split variant
// A uses), followed by a trailing checksum longword whose upper bits are
// forced to the 0x55555555/0xaaaaaaaa clock pattern before mfm_even_odd
// encoding.
const (
	rtypeBSync        = 0x9521
	rtypeBSyncBit     = 16
	rtypeBPayload     = 6552
	rtypeBLongwords   = rtypeBPayload / 4
	rtypeBChecksumOr  = 0xaaaaaaaa
	rtypeBChecksumAnd = 0x55555555
	rtypeBTotalBits   = 105500
)

func decodeRTypeB(s *bitstream.RawStream) (*track.Info, bool) {
	for {
		if !scanSync(s, rtypeBSync, rtypeBSyncBit) {
			return nil, false
		}
		syncStart := s.IndexOffsetBC() - rtypeBSyncBit

		fillerRaw, end := s.NextBits(16)
		if end {
			return nil, false
		}
		if decodeMFMByteFromRaw16(fillerRaw) != 0 {
			continue
		}

		payload := make([]byte, 0, rtypeBPayload)
		ok := true
		for i := 0; i < rtypeBLongwords; i++ {
			raw, readOK := readRawBytes(s, 16)
			if !readOK {
				ok = false
				break
			}
			payload = append(payload, mfm.DecodeBytes(track.ModeMFMEvenOdd, 4, raw)...)
		}
		if !ok {
			return nil, false
		}

		checksumRaw, ok := readRawBytes(s, 16)
		if !ok {
			return nil, false
		}
		decodedChecksum := mfm.DecodeBytes(track.ModeMFMEvenOdd, 4, checksumRaw)
		wantChecksum := uint32(decodedChecksum[0])<<24 | uint32(decodedChecksum[1])<<16 |
			uint32(decodedChecksum[2])<<8 | uint32(decodedChecksum[3])

		computed := mfm.AmigaDOSChecksum(payload)&rtypeBChecksumAnd | rtypeBChecksumOr
		if computed != wantChecksum {
			continue
		}

		return &track.Info{
			Type:           track.RTypeB,
			Dat:            payload,
			Len:            len(payload),
			NrSectors:      1,
			BytesPerSector: rtypeBPayload,
			ValidSectors:   1,
			DataBitoff:     syncStart,
			TotalBits:      rtypeBTotalBits,
		}, true
	}
}

func encodeRTypeB(info *track.Info, b *trackbuf.Buffer) {
	writeSyncBuf(b, rtypeBSync, rtypeBSyncBit)
	b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{0})

	for i := 0; i < rtypeBLongwords; i++ {
		b.Bytes(track.SpeedDD, track.ModeMFMEvenOdd, 4, info.Dat[i*4:i*4+4])
	}

	checksum := mfm.AmigaDOSChecksum(info.Dat)&rtypeBChecksumAnd | rtypeBChecksumOr
	checksumBuf := []byte{
		byte(checksum >> 24), byte(checksum >> 16), byte(checksum >> 8), byte(checksum),
	}
	b.Bytes(track.SpeedDD, track.ModeMFMEvenOdd, 4, checksumBuf)
}

func init() {
	handler.Register(handler.Handler{
		Tag:            track.RTypeB,
		BytesPerSector: rtypeBPayload,
		NrSectors:      1,
		WriteMFM: func(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
			return decodeRTypeB(s)
		},
		ReadMFM: func(tracknr int, info *track.Info, b *trackbuf.Buffer) {
			encodeRTypeB(info, b)
		},
	})
}
