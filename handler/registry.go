package handler

import (
	"fmt"
	"sync/atomic"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/track"
)

// registeredHandlers mirrors the teacher's adapter.registeredAdapters: a
// package-level slice built at init() time and consulted read-only
// afterward (§5: "process-wide, read-only after initialisation").
var (
	registeredHandlers []Handler
	byTag              = map[track.Type]int{} // tag -> index into registeredHandlers
	sealed             atomic.Bool
)

// Register adds a handler to the registry. Order matters: Recognize tries
// handlers in registration order, so weaker patterns (empty_longtrack)
// must come last (§4.5); Seal moves empty_longtrack to the end. Register panics if called after the
// registry has been sealed, or if tag is already registered — both are
// programmer errors (§7), not recoverable conditions.
func Register(h Handler) {
	if sealed.Load() {
		panic(fmt.Sprintf("handler: Register(%v) called after registry sealed", h.Tag))
	}
	if _, exists := byTag[h.Tag]; exists {
		panic(fmt.Sprintf("handler: duplicate registration for tag %v", h.Tag))
	}
	byTag[h.Tag] = len(registeredHandlers)
	registeredHandlers = append(registeredHandlers, h)
}

// Seal freezes the registry against further registration. Callers that
// build their own handler sets (tests, alternate dispatch tables) may
// choose not to call this; container.NewDisk and the cmd package's init()
// both call it after the handlers package's init() functions have run, and
// calls after the first change nothing.
//
// Seal also moves empty_longtrack, if registered, to the end of the
// recognition order. Init() execution order across a package's files
// follows file name, not registration intent, so pinning the weakest
// pattern last here rather than relying on "empty.go sorts last"
// keeps Recognize's fallback behaviour independent of file naming.
func Seal() {
	if idx, ok := byTag[track.EmptyLongtrack]; ok && idx != len(registeredHandlers)-1 {
		h := registeredHandlers[idx]
		registeredHandlers = append(registeredHandlers[:idx], registeredHandlers[idx+1:]...)
		registeredHandlers = append(registeredHandlers, h)
		for tag, i := range byTag {
			if i > idx {
				byTag[tag] = i - 1
			}
		}
		byTag[track.EmptyLongtrack] = len(registeredHandlers) - 1
	}
	sealed.Store(true)
}

// Get looks up a handler by tag. Unknown tags are a programmer error
// (§7); callers that want a non-fatal lookup should check ok.
func Get(tag track.Type) (Handler, bool) {
	idx, ok := byTag[tag]
	if !ok {
		return Handler{}, false
	}
	return registeredHandlers[idx], true
}

// MustGet is Get but panics on an unknown tag, for call sites where the
// tag is known a priori and a miss indicates a programmer error.
func MustGet(tag track.Type) Handler {
	h, ok := Get(tag)
	if !ok {
		panic(fmt.Sprintf("handler: unknown track type %v", tag))
	}
	return h
}

// Recognize tries every registered handler in registration order against
// s, returning the first one whose decode operation succeeds (§4.5: "the
// first that returns non-null wins"). info and h are zero-valued and ok is
// false if no handler recognizes the stream.
func Recognize(tracknr int, s *bitstream.RawStream) (info *track.Info, h Handler, ok bool) {
	for _, cand := range registeredHandlers {
		s.Rewind()
		if got, matched := cand.DecodeMFM(tracknr, s); matched {
			return got, cand, true
		}
	}
	return nil, Handler{}, false
}
