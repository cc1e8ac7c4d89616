package handlers

import (
	"bytes"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/handler"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// crystalsMarker is the literal text following crystals_of_arborea's
// 0xa144 sync, before the filler sequence begins (§6's table).
var crystalsMarker = []byte("ROD0")

const (
	crystalsSync      = 0xa144
	crystalsSyncBits  = 16
	crystalsFiller    = 0x00
	crystalsSeqCount  = 6500
	crystalsMinBits   = 104128
	crystalsTotalBits = 110000
)

func decodeCrystals(s *bitstream.RawStream) (*track.Info, bool) {
	for {
		if !scanSync(s, crystalsSync, crystalsSyncBits) {
			return nil, false
		}
		syncStart := s.IndexOffsetBC() - crystalsSyncBits

		marker := make([]byte, len(crystalsMarker))
		for i := range marker {
			raw, end := s.NextBits(16)
			if end {
				return nil, false
			}
			marker[i] = decodeMFMByteFromRaw16(raw)
		}
		if !bytes.Equal(marker, crystalsMarker) {
			continue
		}

		if !checkSequence(s, crystalsSeqCount, crystalsFiller) {
			continue
		}

		if !checkLength(s, crystalsMinBits) {
			return nil, false
		}

		return &track.Info{
			Type:       track.CrystalsOfArboreaLongtrack,
			Dat:        []byte{crystalsFiller},
			Len:        1,
			DataBitoff: syncStart,
			TotalBits:  crystalsTotalBits,
		}, true
	}
}

func encodeCrystals(info *track.Info, b *trackbuf.Buffer) {
	writeSyncBuf(b, crystalsSync, crystalsSyncBits)
	for _, c := range crystalsMarker {
		b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{c})
	}
	for i := 0; i < crystalsSeqCount; i++ {
		b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{crystalsFiller})
	}
	fillToTotalBits(b, crystalsFiller, crystalsTotalBits)
}

func init() {
	handler.Register(handler.Handler{
		Tag: track.CrystalsOfArboreaLongtrack,
		WriteRaw: func(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
			return decodeCrystals(s)
		},
		ReadRaw: func(tracknr int, info *track.Info, b *trackbuf.Buffer) {
			encodeCrystals(info, b)
		},
	})
}
