package cpu

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		op       byte
		mnemonic string
		mode     Mode
		length   int
	}{
		{OpBRK, "BRK", Implied, 1},
		{OpLDAImm, "LDA", Immediate, 2},
		{OpLDA, "LDA", Absolute, 3},
		{OpSTA, "STA", Absolute, 3},
		{OpADC, "ADC", Absolute, 3},
		{OpBNE, "BNE", Relative, 2},
		{OpSYS, "SYS", Implied, 1},
	}
	for _, tc := range tests {
		t.Run(tc.mnemonic+" "+tc.mode.String(), func(t *testing.T) {
			in, ok := Lookup(tc.op)
			if !ok {
				t.Fatalf("Lookup(%02X) not found", tc.op)
			}
			if in.Mnemonic != tc.mnemonic || in.Mode != tc.mode || in.Length() != tc.length {
				t.Errorf("Lookup(%02X) = %+v length %d", tc.op, in, in.Length())
			}
		})
	}

	if _, ok := Lookup(0x42); ok {
		t.Error("Lookup(0x42) found an instruction")
	}
}

func TestBranchTarget(t *testing.T) {
	tests := []struct {
		pc   int
		dist byte
		want int
	}{
		{0x10, 0x00, 0x12},
		{0x10, 0x05, 0x17},
		{0x16, 0xE8, 0x00},
		{0xFE, 0x01, 0x01},
	}
	for _, tc := range tests {
		if got := BranchTarget(tc.pc, tc.dist); got != tc.want {
			t.Errorf("BranchTarget(%02X, %02X) = %02X, want %02X", tc.pc, tc.dist, got, tc.want)
		}
	}
}
