package asm

import (
	"go6502c/pkg/cpu"
	"reflect"
	"strings"
	"testing"
)

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"abc1", true},
		{"1abc", false},
		{"", false},
		{"ab-c", false},
	}
	for _, tc := range tests {
		if got := isIdentifier(tc.input); got != tc.want {
			t.Errorf("isIdentifier(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}

	if got := normalizeLabel("label"); got != "LABEL" {
		t.Errorf("normalizeLabel(\"label\") = %q; want \"LABEL\"", got)
	}

	numTests := []struct {
		input string
		want  int
	}{
		{"$FD", 0xFD},
		{"0x10", 16},
		{"12", 12},
	}
	for _, tc := range numTests {
		got, err := parseNumber(tc.input)
		if err != nil || got != tc.want {
			t.Errorf("parseNumber(%q) = %d, %v; want %d", tc.input, got, err, tc.want)
		}
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    parsedLine
		wantErr bool
	}{
		{
			"LDA #$05",
			parsedLine{lineNo: 1, mnemonic: "LDA", operands: []string{"#$05"}},
			false,
		},
		{
			"  sta $0012  ; comment",
			parsedLine{lineNo: 1, mnemonic: "STA", operands: []string{"$0012"}},
			false,
		},
		{
			"START: BRK",
			parsedLine{lineNo: 1, labels: []string{"START"}, mnemonic: "BRK", operands: nil},
			false,
		},
		{
			"LABEL1: LABEL2: NOP",
			parsedLine{lineNo: 1, labels: []string{"LABEL1", "LABEL2"}, mnemonic: "NOP", operands: nil},
			false,
		},
		{
			".ORG $FD",
			parsedLine{lineNo: 1, mnemonic: ".ORG", operands: []string{"$FD"}},
			false,
		},
		{
			".STRING \"hello world\"",
			parsedLine{lineNo: 1, mnemonic: ".STRING", operands: []string{"hello world"}},
			false,
		},
		// Invalid cases
		{
			"1LABEL: NOP",
			parsedLine{lineNo: 1},
			true,
		},
		{
			".STRING \"unterminated",
			parsedLine{lineNo: 1},
			true,
		},
		{
			".STRING missing_quote",
			parsedLine{lineNo: 1},
			true,
		},
		{
			".ORG",
			parsedLine{lineNo: 1},
			true,
		},
	}

	for _, tc := range tests {
		got, err := parseLine(tc.line, 1)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseLine(%q) error = %v, wantErr %v", tc.line, err, tc.wantErr)
			continue
		}
		if !tc.wantErr {
			if got.lineNo != tc.want.lineNo {
				t.Errorf("parseLine(%q) lineNo = %d, want %d", tc.line, got.lineNo, tc.want.lineNo)
			}
			if got.mnemonic != tc.want.mnemonic {
				t.Errorf("parseLine(%q) mnemonic = %q, want %q", tc.line, got.mnemonic, tc.want.mnemonic)
			}
			if !reflect.DeepEqual(got.labels, tc.want.labels) && !(len(got.labels) == 0 && len(tc.want.labels) == 0) {
				t.Errorf("parseLine(%q) labels = %v, want %v", tc.line, got.labels, tc.want.labels)
			}
			if !reflect.DeepEqual(got.operands, tc.want.operands) && !(len(got.operands) == 0 && len(tc.want.operands) == 0) {
				t.Errorf("parseLine(%q) operands = %v, want %v", tc.line, got.operands, tc.want.operands)
			}
		}
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    []byte
		wantErr bool
	}{
		{
			"Basic Instructions",
			`
			LDA #$00
			STA $000B
			BRK
			`,
			[]byte{cpu.OpLDAImm, 0x00, cpu.OpSTA, 0x0B, 0x00, cpu.OpBRK},
			false,
		},
		{
			"Print Int",
			`
			LDY #1
			LDX #$01
			SYS
			`,
			[]byte{cpu.OpLDYImm, 0x01, cpu.OpLDXImm, 0x01, cpu.OpSYS},
			false,
		},
		{
			"Forward Branch",
			// BNE at 0, lands on 4
			`
			BNE SKIP
			NOP
			NOP
			SKIP: BRK
			`,
			[]byte{cpu.OpBNE, 0x02, cpu.OpNOP, cpu.OpNOP, cpu.OpBRK},
			false,
		},
		{
			"Backward Branch",
			// BNE at 1 back to 0 wraps to 256 - 3
			`
			LOOP: NOP
			BNE LOOP
			`,
			[]byte{cpu.OpNOP, cpu.OpBNE, 0xFD},
			false,
		},
		{
			"Raw Distance",
			"BNE $05",
			[]byte{cpu.OpBNE, 0x05},
			false,
		},
		{
			".ORG and .STRING",
			`
			BRK
			.ORG 4
			.STRING "hi"
			`,
			[]byte{cpu.OpBRK, 0, 0, 0, 'h', 'i', 0x00},
			false,
		},
		{
			".BYTE",
			".BYTE $01 $02 3",
			[]byte{1, 2, 3},
			false,
		},
		{
			"Unknown Instruction",
			"JMP $0000",
			nil,
			true,
		},
		{
			"Unsupported Mode",
			"ADC #$01",
			nil,
			true,
		},
		{
			"Undefined Label",
			"BNE NOWHERE",
			nil,
			true,
		},
		{
			"Duplicate Label",
			"A: NOP\nA: NOP",
			nil,
			true,
		},
		{
			"Origin Backward",
			"NOP\nNOP\n.ORG 1",
			nil,
			true,
		},
		{
			"Byte Out Of Range",
			"LDA #$100",
			nil,
			true,
		},
		{
			"Program Too Large",
			".ORG $FF\nSTA $0000",
			nil,
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Assemble(tc.code)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Assemble() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Assemble() = % X, want % X", got, tc.want)
			}
		})
	}
}

func TestAssembleSourceMap(t *testing.T) {
	code := "LDA #$01\n\nSTA $0010\nBRK"
	_, sourceMap, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	want := map[int]int{0: 1, 2: 3, 5: 4}
	if !reflect.DeepEqual(sourceMap, want) {
		t.Errorf("source map = %v, want %v", sourceMap, want)
	}
}

func TestDisassemble(t *testing.T) {
	code := []byte{
		cpu.OpLDAImm, 0x01, // 00
		cpu.OpSTA, 0x12, 0x00, // 02
		cpu.OpLDXImm, 0x00, // 05
		cpu.OpCPX, 0x12, 0x00, // 07
		cpu.OpBNE, 0x05, // 0A
		cpu.OpSYS,          // 0C
		0x42,               // 0D
		cpu.OpBRK,          // 0E
	}
	lines := Disassemble(code, len(code))

	wantText := []string{
		"LDA #$01",
		"STA $0012",
		"LDX #$00",
		"CPX $0012",
		"BNE $05      ; -> $11",
		"SYS",
		".BYTE $42",
		"BRK",
	}
	if len(lines) != len(wantText) {
		t.Fatalf("got %d lines, want %d", len(lines), len(wantText))
	}
	for i, l := range lines {
		if l.Text != wantText[i] {
			t.Errorf("line %d: got %q, want %q", i, l.Text, wantText[i])
		}
	}
	if lines[1].Addr != 0x02 || !reflect.DeepEqual(lines[1].Bytes, []byte{cpu.OpSTA, 0x12, 0x00}) {
		t.Errorf("line 1 = %+v", lines[1])
	}
	if got := lines[1].String(); got != "0002  8D 12 00  STA $0012" {
		t.Errorf("Line.String() = %q", got)
	}
}

func TestDisassembleTruncatedOperand(t *testing.T) {
	lines := Disassemble([]byte{cpu.OpSTA, 0x12}, 2)
	if len(lines) != 2 || lines[0].Text != ".BYTE $8D" || lines[1].Text != ".BYTE $12" {
		t.Errorf("truncated instruction decoded as %v", lines)
	}
}

func TestRoundTrip(t *testing.T) {
	src := `
	LDA #$00
	STA $0010
	LOOP: LDX #$01
	CPX $0010
	BNE LOOP
	LDY #$FD
	LDX #$02
	SYS
	BRK
	`
	code, _, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	var sb strings.Builder
	for _, l := range Disassemble(code, len(code)) {
		text := l.Text
		if i := strings.Index(text, ";"); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	again, _, err := Assemble(sb.String())
	if err != nil {
		t.Fatalf("reassembling listing failed: %v\n%s", err, sb.String())
	}
	if !reflect.DeepEqual(code, again) {
		t.Errorf("round trip mismatch:\n% X\n% X", code, again)
	}
}

func TestListing(t *testing.T) {
	image := make([]byte, cpu.MemorySize)
	copy(image, []byte{cpu.OpLDYImm, 0xFD, cpu.OpLDXImm, cpu.SysPrintString, cpu.OpSYS, cpu.OpBRK, 0x07})
	copy(image[0xFD:], []byte{'h', 'i', 0x00})

	got := Listing(image, Layout{CodeEnd: 6, StaticEnd: 7, Heap: 0xFD})

	for _, want := range []string{
		"; code\n",
		"0000  A0 FD     LDY #$FD\n",
		"0005  00        BRK\n",
		"; static\n0006  07\n",
		"; heap\n00FD  .STRING \"hi\"\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("listing missing %q:\n%s", want, got)
		}
	}
}
