package cpu

import "testing"

func TestFamily(t *testing.T) {
	tests := []struct {
		word uint16
		want uint16
	}{
		{0x00E0, 0x00E0},
		{0x00EE, 0x00EE},
		{0x0ABC, 0x00BC},
		{0x1ABC, 0x1000},
		{0x5AB0, 0x5000},
		{0x8AB4, 0x8004},
		{0x8ABE, 0x800E},
		{0xDABC, 0xD000},
		{0xE39E, 0xE09E},
		{0xF365, 0xF065},
	}
	for _, tc := range tests {
		if got := Family(tc.word); got != tc.want {
			t.Errorf("Family(0x%04X) = 0x%04X; want 0x%04X", tc.word, got, tc.want)
		}
	}
}

func TestDecodeFields(t *testing.T) {
	ins := Decode(0xD4A7)
	if ins.Op != OpDRW || ins.X != 0x4 || ins.Y != 0xA || ins.N != 0x7 || ins.KK != 0xA7 || ins.NNN != 0x4A7 {
		t.Errorf("Decode(0xD4A7) = %+v", ins)
	}
	if ins.Raw != 0xD4A7 {
		t.Errorf("Raw: expected 0xD4A7, got 0x%04X", ins.Raw)
	}
}

func TestDecodeFamilies(t *testing.T) {
	tests := []struct {
		word uint16
		op   Op
		text string
	}{
		{0x0000, OpNOP, "NOP"},
		{0x00E0, OpCLS, "CLS"},
		{0x00EE, OpRET, "RET"},
		{0x1234, OpJP, "JP 0x234"},
		{0x2345, OpCALL, "CALL 0x345"},
		{0x3A12, OpSEImm, "SE VA, 0x12"},
		{0x4A12, OpSNEImm, "SNE VA, 0x12"},
		{0x5AB0, OpSEReg, "SE VA, VB"},
		{0x6C7F, OpLDImm, "LD VC, 0x7F"},
		{0x7C01, OpADDImm, "ADD VC, 0x01"},
		{0x8120, OpLDReg, "LD V1, V2"},
		{0x8121, OpOR, "OR V1, V2"},
		{0x8122, OpAND, "AND V1, V2"},
		{0x8123, OpXOR, "XOR V1, V2"},
		{0x8124, OpADDReg, "ADD V1, V2"},
		{0x8125, OpSUB, "SUB V1, V2"},
		{0x8106, OpSHR, "SHR V1"},
		{0x8126, OpSHR, "SHR V1, V2"},
		{0x8127, OpSUBN, "SUBN V1, V2"},
		{0x810E, OpSHL, "SHL V1"},
		{0x9120, OpSNEReg, "SNE V1, V2"},
		{0xA123, OpLDI, "LD I, 0x123"},
		{0xB123, OpJPV0, "JP V0, 0x123"},
		{0xC10F, OpRND, "RND V1, 0x0F"},
		{0xD125, OpDRW, "DRW V1, V2, 5"},
		{0xE19E, OpSKP, "SKP V1"},
		{0xE1A1, OpSKNP, "SKNP V1"},
		{0xF107, OpLDVxDT, "LD V1, DT"},
		{0xF10A, OpLDVxK, "LD V1, K"},
		{0xF115, OpLDDTVx, "LD DT, V1"},
		{0xF118, OpLDSTVx, "LD ST, V1"},
		{0xF11E, OpADDI, "ADD I, V1"},
		{0xF129, OpLDF, "LD F, V1"},
		{0xF133, OpLDB, "LD B, V1"},
		{0xF155, OpLDIVx, "LD [I], V1"},
		{0xF165, OpLDVxI, "LD V1, [I]"},
		{0x8128, OpUnknown, ".WORD 0x8128"},
		{0xE1FF, OpUnknown, ".WORD 0xE1FF"},
	}
	for _, tc := range tests {
		ins := Decode(tc.word)
		if ins.Op != tc.op {
			t.Errorf("Decode(0x%04X).Op = %d; want %d", tc.word, ins.Op, tc.op)
		}
		if got := ins.String(); got != tc.text {
			t.Errorf("Decode(0x%04X).String() = %q; want %q", tc.word, got, tc.text)
		}
	}
}
