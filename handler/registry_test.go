package handler

import (
	"testing"

	"github.com/sergev/amigatrk/bitstream"
	"github.com/sergev/amigatrk/track"
)

func resetRegistry() {
	registeredHandlers = nil
	byTag = map[track.Type]int{}
	sealed.Store(false)
}

func TestRegisterAndGet(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	Register(Handler{Tag: track.RTypeA})
	h, ok := Get(track.RTypeA)
	if !ok {
		t.Fatal("Get(RTypeA) = false, want true")
	}
	if h.Tag != track.RTypeA {
		t.Errorf("h.Tag = %v, want %v", h.Tag, track.RTypeA)
	}
	if _, ok := Get(track.RTypeB); ok {
		t.Error("Get(RTypeB) = true, want false for an unregistered tag")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	Register(Handler{Tag: track.RTypeA})
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(Handler{Tag: track.RTypeA})
}

func TestRegisterAfterSealPanics(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	Seal()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on Register after Seal")
		}
	}()
	Register(Handler{Tag: track.RTypeA})
}

func TestSealMovesEmptyLongtrackLast(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	Register(Handler{Tag: track.EmptyLongtrack})
	Register(Handler{Tag: track.RTypeA})
	Register(Handler{Tag: track.RTypeB})
	Seal()

	if registeredHandlers[len(registeredHandlers)-1].Tag != track.EmptyLongtrack {
		t.Errorf("last handler = %v, want EmptyLongtrack", registeredHandlers[len(registeredHandlers)-1].Tag)
	}
	if _, ok := Get(track.RTypeA); !ok {
		t.Error("Get(RTypeA) should still succeed after Seal reorders the slice")
	}
}

func TestRecognizeTriesInOrderAndRewinds(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	var attempts []track.Type
	Register(Handler{
		Tag: track.RTypeA,
		WriteRaw: func(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
			attempts = append(attempts, track.RTypeA)
			s.NextBits(8) // consume some bits, should not starve the next handler
			return nil, false
		},
	})
	Register(Handler{
		Tag: track.RTypeB,
		WriteRaw: func(tracknr int, s *bitstream.RawStream) (*track.Info, bool) {
			attempts = append(attempts, track.RTypeB)
			v, end := s.NextBits(8)
			if end || v != 0xab {
				return nil, false
			}
			return &track.Info{Type: track.RTypeB}, true
		},
	})

	s := bitstream.New([]byte{0xab}, 8)
	info, h, ok := Recognize(0, s)
	if !ok {
		t.Fatal("Recognize() ok = false, want true")
	}
	if h.Tag != track.RTypeB || info.Type != track.RTypeB {
		t.Errorf("recognized %v, want RTypeB", h.Tag)
	}
	if len(attempts) != 2 || attempts[0] != track.RTypeA || attempts[1] != track.RTypeB {
		t.Errorf("attempts = %v, want [RTypeA RTypeB]", attempts)
	}
}

func TestMustGetPanicsOnUnknownTag(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown tag")
		}
	}()
	MustGet(track.RTypeA)
}
