// Package container implements the minimal "struct disk" interface the
// core handler contract is written against (§6 of the specification): a
// fixed-size array of per-track decode results that the cmd package's
// decode subcommand and the handler tests drive end to end, mirroring the way the teacher's adapter
// package sits between a concrete transport and the format-independent
// read/write/format/erase operations.
package container

import (
	"fmt"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/handler"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// Disk holds one decoded track.Info per track number, exactly as the
// upstream consumer described in §6 holds di->track[tracknr].
type Disk struct {
	Tracks []*track.Info
}

// NewDisk allocates a Disk with room for nrTracks, all initially nil. It
// also seals the handler registry (handler.Seal, idempotent past the first
// call) so empty_longtrack's must-be-last ordering (§4.5) is in effect
// before any DecodeAuto runs, regardless of whether the caller also went
// through cmd's own init-time Seal call.
func NewDisk(nrTracks int) *Disk {
	handler.Seal()
	return &Disk{Tracks: make([]*track.Info, nrTracks)}
}

func (d *Disk) checkTrack(tracknr int) error {
	if tracknr < 0 || tracknr >= len(d.Tracks) {
		return fmt.Errorf("container: track %d out of range [0,%d)", tracknr, len(d.Tracks))
	}
	return nil
}

// DecodeMFM runs the named tag's handler against s and, on success, stores
// the resulting track.Info at tracknr.
func (d *Disk) DecodeMFM(tracknr int, s *bitstream.RawStream, tag track.Type) bool {
	if err := d.checkTrack(tracknr); err != nil {
		return false
	}
	h, ok := handler.Get(tag)
	if !ok {
		return false
	}
	info, ok := h.DecodeMFM(tracknr, s)
	if !ok {
		return false
	}
	d.Tracks[tracknr] = info
	return true
}

// DecodeAuto runs every registered handler in turn (§4.5) and stores the
// first one that recognizes s.
func (d *Disk) DecodeAuto(tracknr int, s *bitstream.RawStream) (track.Type, bool) {
	if err := d.checkTrack(tracknr); err != nil {
		return 0, false
	}
	info, h, ok := handler.Recognize(tracknr, s)
	if !ok {
		return 0, false
	}
	d.Tracks[tracknr] = info
	return h.Tag, true
}

// EncodeMFM re-encodes the previously decoded track tracknr into b, using
// the handler that matches its recorded tag.
func (d *Disk) EncodeMFM(tracknr int, b *trackbuf.Buffer) bool {
	if err := d.checkTrack(tracknr); err != nil {
		return false
	}
	info := d.Tracks[tracknr]
	if info == nil {
		return false
	}
	h, ok := handler.Get(info.Type)
	if !ok {
		return false
	}
	return h.EncodeMFM(tracknr, info, b) == nil
}
