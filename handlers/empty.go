package handlers

import (
	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/handler"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

const (
	emptyMinBits   = 105000
	emptyTotalBits = 110000
)

// empty_longtrack carries no sync and no data; it only checks that the
// revolution is long enough. It must be registered last (§4.5, §8 item 3:
// "an all-zero stream must not be accepted by any handler except
// empty_longtrack") since every other handler's sync check is a strictly
// stronger condition than this one's bare length gate.
func decodeEmpty(s *bitstream.RawStream) (*track.Info, bool) {
	if !checkLength(s, emptyMinBits) {
		return nil, false
	}
	return &track.Info{
		Type:      track.EmptyLongtrack,
		TotalBits: emptyTotalBits,
	}, true
}

func encodeEmpty(info *track.Info, b *trackbuf.Buffer) {
	fillToTotalBits(b, 0x00, emptyTotalBits)
}

func init() {
	handler.Register(handler.Handler{
		Tag: track.EmptyLongtrack,
		WriteRaw: func(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
			return decodeEmpty(s)
		},
		ReadRaw: func(tracknr int, info *track.Info, b *trackbuf.Buffer) {
			encodeEmpty(info, b)
		},
	})
}
