package bitfield

import "testing"

func TestNodeSnapshotRoundTrip(t *testing.T) {
	tests := []NodeSnapshot{
		{Allocated: true, Level: 254},
		{Unusable: true, Level: 253},
		{Filled: true, Level: 255},
		{Level: 3},
	}

	for _, want := range tests {
		packed, err := PackNodeSnapshot(want)
		if err != nil {
			t.Fatalf("PackNodeSnapshot(%+v): %v", want, err)
		}

		got, err := UnpackNodeSnapshot(packed)
		if err != nil {
			t.Fatalf("UnpackNodeSnapshot(0x%x): %v", packed, err)
		}

		if got != want {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}
