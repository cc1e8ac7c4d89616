package handlers

import (
	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/handler"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// longtrackSpec captures the parameters that differ across the long-track
// protection variants of §4.4.c / §6's table: everything but sync
// value(s), filler byte, sequence count, minimum length and recorded
// total_bits is identical between them.
type longtrackSpec struct {
	tag            track.Type
	sync           uint32
	syncBits       int
	filler         byte
	variableFiller bool // protec_longtrack: filler comes from the stream, not a constant
	seqCount       int
	minBits        int // 0 means no length gate (gremlin/tiertex)
	totalBits      int
}

// decodeLongtrack implements the shared long-track recognition shape
// (§4.4.c): scan for sync, verify the filler repeats seqCount times,
// optionally gate on minimum revolution length, then return a tiny
// payload recording what's needed to re-encode.
func decodeLongtrack(spec longtrackSpec, s *bitstream.RawStream) (*track.Info, bool) {
	for {
		if !scanSync(s, spec.sync, spec.syncBits) {
			return nil, false
		}
		syncStart := s.IndexOffsetBC() - spec.syncBits

		filler := spec.filler
		if spec.variableFiller {
			raw, end := s.NextBits(16)
			if end {
				return nil, false
			}
			filler = decodeMFMByteFromRaw16(raw)
			if !checkSequence(s, spec.seqCount-1, filler) {
				continue
			}
		} else {
			if !checkSequence(s, spec.seqCount, filler) {
				continue
			}
		}

		if spec.minBits > 0 {
			if !checkLength(s, spec.minBits) {
				// Fatal: the sync matched but the protection constraint
				// did not, so this handler aborts rather than retrying.
				return nil, false
			}
		}

		return &track.Info{
			Type:       spec.tag,
			Dat:        []byte{filler},
			Len:        1,
			DataBitoff: syncStart,
			TotalBits:  spec.totalBits,
		}, true
	}
}

// encodeLongtrack is decodeLongtrack's inverse: emit the sync, repeat the
// filler seqCount times, then pad with more filler out to total_bits.
func encodeLongtrack(spec longtrackSpec, info *track.Info, b *trackbuf.Buffer) {
	filler := spec.filler
	if spec.variableFiller && len(info.Dat) > 0 {
		filler = info.Dat[0]
	}
	writeSyncBuf(b, spec.sync, spec.syncBits)
	for i := 0; i < spec.seqCount; i++ {
		b.Bytes(track.SpeedDD, track.ModeMFMAll, 1, []byte{filler})
	}
	fillToTotalBits(b, filler, spec.totalBits)
}

func registerLongtrack(spec longtrackSpec) {
	handler.Register(handler.Handler{
		Tag: spec.tag,
		WriteRaw: func(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
			return decodeLongtrack(spec, s)
		},
		ReadRaw: func(tracknr int, info *track.Info, b *trackbuf.Buffer) {
			encodeLongtrack(spec, info, b)
		},
	})
}

func init() {
	registerLongtrack(longtrackSpec{
		tag:            track.ProtecLongtrack,
		sync:           0x4454,
		syncBits:       16,
		variableFiller: true,
		seqCount:       1000,
		minBits:        107200,
		totalBits:      110000,
	})
	registerLongtrack(longtrackSpec{
		tag:       track.GremlinLongtrack,
		sync:      0x41244124,
		syncBits:  32,
		filler:    0x00,
		seqCount:  8,
		minBits:   0,
		totalBits: 105500,
	})
	registerLongtrack(longtrackSpec{
		tag:       track.InfogramesLongtrack,
		sync:      0xa144,
		syncBits:  16,
		filler:    0x00,
		seqCount:  6510,
		minBits:   104160,
		totalBits: 105500,
	})
	registerLongtrack(longtrackSpec{
		tag:       track.BatLongtrack,
		sync:      0xaaaa8945, // 0x8945 preceded by 0xaaaa
		syncBits:  32,
		filler:    0x00,
		seqCount:  6826,
		minBits:   109500,
		totalBits: 110000,
	})
	registerLongtrack(longtrackSpec{
		tag:       track.AppLongtrack,
		sync:      0x924a,
		syncBits:  16,
		filler:    0xdc,
		seqCount:  6600,
		minBits:   110000,
		totalBits: 111000,
	})
}
