package asm

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"gochip8/pkg/cpu"
)

// encodeWords converts instruction words to big-endian bytes.
func encodeWords(words ...uint16) []byte {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		out[i*2] = byte(w >> 8)
		out[i*2+1] = byte(w & 0xFF)
	}
	return out
}

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

	regTests := []struct {
		token   string
		want    uint16
		wantErr bool
	}{
		{"V0", 0, false},
		{"va", 0xA, false},
		{"VF", 0xF, false},
		{"VG", 0, true},
		{"V10", 0, true},
		{"R0", 0, true},
	}
	for _, tc := range regTests {
		got, err := parseRegister(tc.token, 1)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("parseRegister(%q) = %d, %v; want %d, wantErr %v", tc.token, got, err, tc.want, tc.wantErr)
		}
	}

	for _, m := range []string{"cls", "LD", "DRW", "SKNP", "SUBN"} {
		if !isMnemonic(m) {
			t.Errorf("isMnemonic(%q) = false; want true", m)
		}
	}
	if isMnemonic("HLT") {
		t.Error("isMnemonic(\"HLT\") = true; want false")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    parsedLine
		wantErr bool
	}{
		{
			"LD V0, 5",
			parsedLine{lineNo: 1, mnemonic: "LD", operands: []string{"V0", "5"}},
			false,
		},
		{
			"  ld v0, v1  ; comment",
			parsedLine{lineNo: 1, mnemonic: "LD", operands: []string{"v0", "v1"}},
			false,
		},
		{
			"LD [I], V3 // dump",
			parsedLine{lineNo: 1, mnemonic: "LD", operands: []string{"[I]", "V3"}},
			false,
		},
		{
			"START: CLS",
			parsedLine{lineNo: 1, labels: []string{"START"}, mnemonic: "CLS", operands: nil},
			false,
		},
		{
			"LABEL1: LABEL2: RET",
			parsedLine{lineNo: 1, labels: []string{"LABEL1", "LABEL2"}, mnemonic: "RET", operands: nil},
			false,
		},
		{
			".ORG 0x300",
			parsedLine{lineNo: 1, mnemonic: ".ORG", operands: []string{"0x300"}},
			false,
		},
		{
			".byte 0xF0, 0x90",
			parsedLine{lineNo: 1, mnemonic: ".BYTE", operands: []string{"0xF0", "0x90"}},
			false,
		},
		// Invalid cases
		{
			"1LABEL: CLS",
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

func TestAssembleInstructions(t *testing.T) {
	tests := []struct {
		src  string
		want uint16
	}{
		{"NOP", 0x0000},
		{"CLS", 0x00E0},
		{"RET", 0x00EE},
		{"JP 0x234", 0x1234},
		{"JP V0, 0x234", 0xB234},
		{"CALL 0x345", 0x2345},
		{"SE V3, 0x12", 0x3312},
		{"SE V3, V4", 0x5340},
		{"SNE V3, 18", 0x4312},
		{"SNE V3, V4", 0x9340},
		{"LD V5, 0xFF", 0x65FF},
		{"LD V5, V6", 0x8560},
		{"LD I, 0x2F0", 0xA2F0},
		{"LD V5, DT", 0xF507},
		{"LD V5, K", 0xF50A},
		{"LD DT, V5", 0xF515},
		{"LD ST, V5", 0xF518},
		{"LD F, V5", 0xF529},
		{"LD B, V5", 0xF533},
		{"LD [I], V5", 0xF555},
		{"LD V5, [I]", 0xF565},
		{"ADD V1, 1", 0x7101},
		{"ADD V1, V2", 0x8124},
		{"ADD I, V1", 0xF11E},
		{"OR V1, V2", 0x8121},
		{"AND V1, V2", 0x8122},
		{"XOR V1, V2", 0x8123},
		{"SUB V1, V2", 0x8125},
		{"SHR V1", 0x8106},
		{"SHR V1, V2", 0x8126},
		{"SUBN V1, V2", 0x8127},
		{"SHL VE", 0x8E0E},
		{"RND VA, 0x0F", 0xCA0F},
		{"DRW V1, V2, 15", 0xD12F},
		{"SKP V9", 0xE99E},
		{"SKNP V9", 0xE9A1},
	}
	for _, tc := range tests {
		got, _, err := Assemble(tc.src)
		if err != nil {
			t.Errorf("Assemble(%q): %v", tc.src, err)
			continue
		}
		if want := encodeWords(tc.want); !bytes.Equal(got, want) {
			t.Errorf("Assemble(%q) = % X; want % X", tc.src, got, want)
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
			"Labels and Jumps",
			// 0x200 LD V0, 5
			// 0x202 LOOP: ADD V0, 0xFF
			// 0x204 SE V0, 0
			// 0x206 JP LOOP
			// 0x208 END: JP END
			`
			LD V0, 5
			LOOP:
			ADD V0, 0xFF
			SE V0, 0
			JP LOOP
			END: JP END
			`,
			encodeWords(0x6005, 0x70FF, 0x3000, 0x1202, 0x1208),
			false,
		},
		{
			"Forward reference",
			`
			CALL sub
			JP 0x200
			sub: RET
			`,
			encodeWords(0x2204, 0x1200, 0x00EE),
			false,
		},
		{
			".ORG",
			`
			.ORG 0x204
			CLS
			`,
			append([]byte{0, 0, 0, 0}, encodeWords(0x00E0)...),
			false,
		},
		{
			".BYTE and .WORD",
			`
			LD I, sprite
			sprite: .BYTE 0xF0, 0x90, 144
			.WORD 0x1234
			`,
			append(encodeWords(0xA202), 0xF0, 0x90, 0x90, 0x12, 0x34),
			false,
		},
		{"Unknown instruction", "HLT", nil, true},
		{"Duplicate label", "a: CLS\na: CLS", nil, true},
		{"Undefined label", "JP nowhere", nil, true},
		{"Immediate out of range", "LD V0, 0x100", nil, true},
		{"Nibble out of range", "DRW V0, V1, 16", nil, true},
		{"Bad register", "LD VX, 1", nil, true},
		{"JP offset needs V0", "JP V1, 0x200", nil, true},
		{"Wrong operand count", "CLS V0", nil, true},
		{"ORG below program start", ".ORG 0x100", nil, true},
		{"ORG backward", "CLS\nCLS\n.ORG 0x202", nil, true},
		{"Program too large", ".ORG 0xFFF\nCLS", nil, true},
	}

	for _, tc := range tests {
		got, _, err := Assemble(tc.code)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tc.name, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && !bytes.Equal(got, tc.want) {
			t.Errorf("%s: got % X; want % X", tc.name, got, tc.want)
		}
	}
}

// TestDisassemblyRoundTrip assembles the text produced by the decoder and
// expects the original word back.
func TestDisassemblyRoundTrip(t *testing.T) {
	words := []uint16{
		0x0000, 0x00E0, 0x00EE, 0x1ABC, 0x2ABC, 0x3A12, 0x4A12, 0x5AB0,
		0x6A12, 0x7A12, 0x8AB0, 0x8AB1, 0x8AB2, 0x8AB3, 0x8AB4, 0x8AB5,
		0x8AB6, 0x8A06, 0x8AB7, 0x8ABE, 0x9AB0, 0xAABC, 0xBABC, 0xCA12,
		0xDAB5, 0xEA9E, 0xEAA1, 0xFA07, 0xFA0A, 0xFA15, 0xFA18, 0xFA1E,
		0xFA29, 0xFA33, 0xFA55, 0xFA65, 0x8AB8,
	}
	var src strings.Builder
	for _, w := range words {
		src.WriteString(cpu.Decode(w).String())
		src.WriteByte('\n')
	}

	got, _, err := Assemble(src.String())
	if err != nil {
		t.Fatalf("Assemble: %v\n%s", err, src.String())
	}
	if want := encodeWords(words...); !bytes.Equal(got, want) {
		t.Errorf("round trip mismatch:\n got % X\nwant % X", got, want)
	}
}
