// Package handler defines the four-operation track-type contract (§4.4)
// and the process-wide registry that dispatches to it (§4.5), generalizing
// the teacher's adapter.FloppyAdapter/adapter.RegisterAdapter pattern: a
// registered-factory table driving a small capability interface, now
// re-expressed per §9's guidance as a struct of (possibly nil) function
// values instead of a Go interface, since any given handler legitimately
// implements only two of the four operations (an MFM-data handler never
// implements WriteRaw/ReadRaw; a long-track handler never implements
// WriteMFM/ReadMFM) and a single interface can't express that without
// empty-body stub methods.
package handler

import (
	"fmt"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/track"
	"github.com/sergev/amigatrk/trackbuf"
)

// WriteMFMFunc scans an MFM-encoded raw-bit stream for the handler's
// sync(s), decodes and validates, and returns the newly owned payload on
// success. ok is false when the stream was scanned to exhaustion without a
// valid match (§4.4, §7: not-recognised and stream-exhausted-mid-record
// are both reported this way, not as an error).
type WriteMFMFunc func(tracknr int, s *bitstream.RawStream) (info *track.Info, ok bool)

// ReadMFMFunc emits the MFM-encoded track for the given payload.
type ReadMFMFunc func(tracknr int, info *track.Info, b *trackbuf.Buffer)

// WriteRawFunc is WriteMFMFunc's raw-stream counterpart, used by formats
// whose notable property is structural (long-track protections) rather
// than MFM-encoded data.
type WriteRawFunc func(tracknr int, s *bitstream.RawStream) (info *track.Info, ok bool)

// ReadRawFunc is ReadMFMFunc's raw-stream counterpart.
type ReadRawFunc func(tracknr int, info *track.Info, b *trackbuf.Buffer)

// Handler is the immutable descriptor for one named track-type. Any of
// the four operations may be nil.
type Handler struct {
	Tag            track.Type
	WriteMFM       WriteMFMFunc
	ReadMFM        ReadMFMFunc
	WriteRaw       WriteRawFunc
	ReadRaw        ReadRawFunc
	BytesPerSector int
	NrSectors      int
}

// DecodeMFM dispatches to h.WriteMFM if present, otherwise h.WriteRaw
// (seven-cities and the long-track protections consume the raw stream
// directly; R-Type A/B consume the MFM-decoded path). Returns ok=false if
// neither operation is present.
func (h Handler) DecodeMFM(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
	if h.WriteMFM != nil {
		return h.WriteMFM(tracknr, s)
	}
	if h.WriteRaw != nil {
		return h.WriteRaw(tracknr, s)
	}
	return nil, false
}

// EncodeMFM is DecodeMFM's write-side counterpart.
func (h Handler) EncodeMFM(tracknr int, info *track.Info, b *trackbuf.Buffer) error {
	if h.ReadMFM != nil {
		h.ReadMFM(tracknr, info, b)
		return nil
	}
	if h.ReadRaw != nil {
		h.ReadRaw(tracknr, info, b)
		return nil
	}
	return fmt.Errorf("handler: %v has no encode operation", h.Tag)
}
