package track

import "testing"

func TestValidateValidSectorsRequiresDat(t *testing.T) {
	info := &Info{Type: RTypeA, ValidSectors: 1, Dat: nil}
	if err := info.Validate(); err == nil {
		t.Error("expected error when valid_sectors set but dat is nil")
	}
}

func TestValidateLenMustMatchSectorMath(t *testing.T) {
	info := &Info{
		Type:           RTypeA,
		ValidSectors:   1,
		Dat:            make([]byte, 10),
		Len:            10,
		NrSectors:      1,
		BytesPerSector: 5968,
	}
	if err := info.Validate(); err == nil {
		t.Error("expected error when len does not match nr_sectors*bytes_per_sector")
	}
}

func TestValidateAcceptsConsistentRecord(t *testing.T) {
	info := &Info{
		Type:           RTypeA,
		ValidSectors:   1,
		Dat:            make([]byte, 5968),
		Len:            5968,
		NrSectors:      1,
		BytesPerSector: 5968,
		DataBitoff:     100,
		TotalBits:      110000,
	}
	if err := info.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateDataBitoffMustBeWithinTotalBits(t *testing.T) {
	info := &Info{Type: EmptyLongtrack, DataBitoff: 200, TotalBits: 100}
	if err := info.Validate(); err == nil {
		t.Error("expected error when data_bitoff >= total_bits")
	}
}

func TestValidateZeroValuedEmptyLongtrack(t *testing.T) {
	info := &Info{Type: EmptyLongtrack, TotalBits: 110000}
	if err := info.Validate(); err != nil {
		t.Errorf("unexpected error for an all-metadata empty_longtrack record: %v", err)
	}
}

func TestTypeString(t *testing.T) {
	if got := RTypeA.String(); got != "rtype_a" {
		t.Errorf("RTypeA.String() = %q, want %q", got, "rtype_a")
	}
	if got := Type(999).String(); got != "Type(999)" {
		t.Errorf("Type(999).String() = %q, want %q", got, "Type(999)")
	}
}
