package handlers

import "github.com/sergev/amigatrk/track"

// tiertex_longtrack shares gremlin_longtrack's decode logic byte for
// byte: the source this specification is drawn from distinguishes the two
// only by the caller's prior-set track.Info.Type field, not by any
// difference in the scan itself (§9's Open Question). A stream accepted
// by one is accepted by the other. A stricter variant checking
// track_len_bc <= 103680, as the original protection-checker documentation
// claims, is plausible but is not present in the source this specification
// preserves; implementing it here would silently diverge from a source
// behaviour the specification explicitly asks to keep.
func init() {
	registerLongtrack(longtrackSpec{
		tag:       track.TiertexLongtrack,
		sync:      0x41244124,
		syncBits:  32,
		filler:    0x00,
		seqCount:  8,
		minBits:   0,
		totalBits: 105500,
	})
}
