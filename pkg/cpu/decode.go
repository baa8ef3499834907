package cpu

import "fmt"

// Op identifies an instruction family after decoding.
type Op uint8

const (
	OpUnknown Op = iota
	OpNOP        // 0000
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEImm      // 3XKK
	OpSNEImm     // 4XKK
	OpSEReg      // 5XY0
	OpLDImm      // 6XKK
	OpADDImm     // 7XKK
	OpLDReg      // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADDReg     // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEReg     // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpRND        // CXKK
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDVxK      // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDI       // FX1E
	OpLDF        // FX29
	OpLDB        // FX33
	OpLDIVx      // FX55
	OpLDVxI      // FX65
)

// families maps the widened discriminant of an instruction word to its Op.
var families = map[uint16]Op{
	0x0000: OpNOP,
	0x00E0: OpCLS,
	0x00EE: OpRET,
	0x1000: OpJP,
	0x2000: OpCALL,
	0x3000: OpSEImm,
	0x4000: OpSNEImm,
	0x5000: OpSEReg,
	0x6000: OpLDImm,
	0x7000: OpADDImm,
	0x8000: OpLDReg,
	0x8001: OpOR,
	0x8002: OpAND,
	0x8003: OpXOR,
	0x8004: OpADDReg,
	0x8005: OpSUB,
	0x8006: OpSHR,
	0x8007: OpSUBN,
	0x800E: OpSHL,
	0x9000: OpSNEReg,
	0xA000: OpLDI,
	0xB000: OpJPV0,
	0xC000: OpRND,
	0xD000: OpDRW,
	0xE09E: OpSKP,
	0xE0A1: OpSKNP,
	0xF007: OpLDVxDT,
	0xF00A: OpLDVxK,
	0xF015: OpLDDTVx,
	0xF018: OpLDSTVx,
	0xF01E: OpADDI,
	0xF029: OpLDF,
	0xF033: OpLDB,
	0xF055: OpLDIVx,
	0xF065: OpLDVxI,
}

// Instruction is a decoded instruction word with every operand field
// extracted; which fields are meaningful depends on Op.
type Instruction struct {
	Raw uint16
	Op  Op
	X   uint8
	Y   uint8
	N   uint8
	KK  uint8
	NNN uint16
}

// Family returns the discriminant used to select a handler: the top
// nibble, widened with the low byte for the 0, E and F families and with
// the low nibble for the 8 family.
func Family(word uint16) uint16 {
	switch word & 0xF000 {
	case 0x0000, 0xE000, 0xF000:
		return word & 0xF0FF
	case 0x8000:
		return word & 0xF00F
	default:
		return word & 0xF000
	}
}

// Decode never fails; words with no known family decode to OpUnknown.
func Decode(word uint16) Instruction {
	return Instruction{
		Raw: word,
		Op:  families[Family(word)],
		X:   uint8(word >> 8 & 0xF),
		Y:   uint8(word >> 4 & 0xF),
		N:   uint8(word & 0xF),
		KK:  uint8(word & 0xFF),
		NNN: word & 0xFFF,
	}
}

// String renders the instruction in the mnemonic syntax accepted by pkg/asm.
func (ins Instruction) String() string {
	x, y := ins.X, ins.Y
	switch ins.Op {
	case OpNOP:
		return "NOP"
	case OpCLS:
		return "CLS"
	case OpRET:
		return "RET"
	case OpJP:
		return fmt.Sprintf("JP 0x%03X", ins.NNN)
	case OpCALL:
		return fmt.Sprintf("CALL 0x%03X", ins.NNN)
	case OpSEImm:
		return fmt.Sprintf("SE V%X, 0x%02X", x, ins.KK)
	case OpSNEImm:
		return fmt.Sprintf("SNE V%X, 0x%02X", x, ins.KK)
	case OpSEReg:
		return fmt.Sprintf("SE V%X, V%X", x, y)
	case OpLDImm:
		return fmt.Sprintf("LD V%X, 0x%02X", x, ins.KK)
	case OpADDImm:
		return fmt.Sprintf("ADD V%X, 0x%02X", x, ins.KK)
	case OpLDReg:
		return fmt.Sprintf("LD V%X, V%X", x, y)
	case OpOR:
		return fmt.Sprintf("OR V%X, V%X", x, y)
	case OpAND:
		return fmt.Sprintf("AND V%X, V%X", x, y)
	case OpXOR:
		return fmt.Sprintf("XOR V%X, V%X", x, y)
	case OpADDReg:
		return fmt.Sprintf("ADD V%X, V%X", x, y)
	case OpSUB:
		return fmt.Sprintf("SUB V%X, V%X", x, y)
	case OpSHR:
		return shiftString("SHR", x, y)
	case OpSUBN:
		return fmt.Sprintf("SUBN V%X, V%X", x, y)
	case OpSHL:
		return shiftString("SHL", x, y)
	case OpSNEReg:
		return fmt.Sprintf("SNE V%X, V%X", x, y)
	case OpLDI:
		return fmt.Sprintf("LD I, 0x%03X", ins.NNN)
	case OpJPV0:
		return fmt.Sprintf("JP V0, 0x%03X", ins.NNN)
	case OpRND:
		return fmt.Sprintf("RND V%X, 0x%02X", x, ins.KK)
	case OpDRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, ins.N)
	case OpSKP:
		return fmt.Sprintf("SKP V%X", x)
	case OpSKNP:
		return fmt.Sprintf("SKNP V%X", x)
	case OpLDVxDT:
		return fmt.Sprintf("LD V%X, DT", x)
	case OpLDVxK:
		return fmt.Sprintf("LD V%X, K", x)
	case OpLDDTVx:
		return fmt.Sprintf("LD DT, V%X", x)
	case OpLDSTVx:
		return fmt.Sprintf("LD ST, V%X", x)
	case OpADDI:
		return fmt.Sprintf("ADD I, V%X", x)
	case OpLDF:
		return fmt.Sprintf("LD F, V%X", x)
	case OpLDB:
		return fmt.Sprintf("LD B, V%X", x)
	case OpLDIVx:
		return fmt.Sprintf("LD [I], V%X", x)
	case OpLDVxI:
		return fmt.Sprintf("LD V%X, [I]", x)
	default:
		return fmt.Sprintf(".WORD 0x%04X", ins.Raw)
	}
}

// shiftString omits the unused Vy operand unless the word carries one.
func shiftString(mnemonic string, x, y uint8) string {
	if y == 0 {
		return fmt.Sprintf("%s V%X", mnemonic, x)
	}
	return fmt.Sprintf("%s V%X, V%X", mnemonic, x, y)
}
