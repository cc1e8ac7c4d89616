package handlers

import (
	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/handler"
	"github.com/sergev/amigatrk/mfm"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// sevencities_longtrack is not a long track at all (§4.4.c): it requires
// first spotting a trailing sync, then scanning forward to a leading
// sync, then capturing the next 122 raw bytes and verifying their
// CRC-16/CCITT. This shows the same four-operation contract supporting
// non-trivial recognition beyond the simple filler-repeat shape the other
// long-track handlers share.
const (
	sevenCitiesTrailingSync = 0x924a
	sevenCitiesLeadingSync  = 0x9251
	sevenCitiesSyncBits     = 16
	sevenCitiesPayloadLen   = 122
	sevenCitiesWantCRC      = 0x010a
	sevenCitiesGapBits      = 400
	sevenCitiesTotalBits    = 101500
)

func decodeSevenCities(s *bitstream.RawStream) (*track.Info, bool) {
	for {
		if !scanSync(s, sevenCitiesTrailingSync, sevenCitiesSyncBits) {
			return nil, false
		}
		if !scanSync(s, sevenCitiesLeadingSync, sevenCitiesSyncBits) {
			return nil, false
		}

		dataBitoff := s.IndexOffsetBC()
		payload, ok := readRawBytes(s, sevenCitiesPayloadLen)
		if !ok {
			return nil, false
		}
		if mfm.CRC16CCITT(0, payload) != sevenCitiesWantCRC {
			continue
		}

		return &track.Info{
			Type:           track.SevenCitiesLongtrack,
			Dat:            payload,
			Len:            len(payload),
			NrSectors:      1,
			BytesPerSector: len(payload),
			ValidSectors:   1,
			DataBitoff:     dataBitoff,
			TotalBits:      sevenCitiesTotalBits,
		}, true
	}
}

func encodeSevenCities(info *track.Info, b *trackbuf.Buffer) {
	writeSyncBuf(b, sevenCitiesTrailingSync, sevenCitiesSyncBits)
	b.Bits(track.SpeedDD, track.ModeRaw, 1, 0)
	for i := 1; i < sevenCitiesGapBits; i++ {
		b.Bits(track.SpeedDD, track.ModeRaw, 1, 0)
	}
	writeSyncBuf(b, sevenCitiesLeadingSync, sevenCitiesSyncBits)
	for _, by := range info.Dat {
		b.Bits(track.SpeedDD, track.ModeRaw, 8, uint32(by))
	}
	fillToTotalBits(b, 0x00, sevenCitiesTotalBits)
}

func init() {
	handler.Register(handler.Handler{
		Tag:            track.SevenCitiesLongtrack,
		BytesPerSector: sevenCitiesPayloadLen,
		NrSectors:      1,
		WriteRaw: func(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
			return decodeSevenCities(s)
		},
		ReadRaw: func(tracknr int, info *track.Info, b *trackbuf.Buffer) {
			encodeSevenCities(info, b)
		},
	})
}
