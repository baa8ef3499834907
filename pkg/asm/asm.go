package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/cpu"
)

var zeroOperandOps = map[string]uint16{
	"NOP": 0x0000,
	"CLS": 0x00E0,
	"RET": 0x00EE,
}

// twoRegisterOps are the 8XYn ALU forms, keyed to their low nibble.
var twoRegisterOps = map[string]uint16{
	"OR":   0x8001,
	"AND":  0x8002,
	"XOR":  0x8003,
	"SUB":  0x8005,
	"SUBN": 0x8007,
}

// shiftOps take Vx and an optional, ignored Vy.
var shiftOps = map[string]uint16{
	"SHR": 0x8006,
	"SHL": 0x800E,
}

var oneRegisterOps = map[string]uint16{
	"SKP":  0xE09E,
	"SKNP": 0xE0A1,
}

// addressOps take a single 12-bit address.
var addressOps = map[string]uint16{
	"CALL": 0x2000,
}

// Special operands of the LD and ADD forms.
const (
	operandI     = "I"
	operandIndir = "[I]"
	operandDT    = "DT"
	operandST    = "ST"
	operandK     = "K"
	operandF     = "F"
	operandB     = "B"
)

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble translates source into a ROM image meant to be loaded at
// cpu.ProgramStart. The returned map links ROM offsets to source lines.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(cpu.ProgramStart)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address >= cpu.MemorySize {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p.operands, lineNo)
			if err != nil {
				return err
			}
			if target < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = target
			continue

		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			address += uint32(len(p.operands))

		case ".WORD":
			if len(p.operands) != 1 {
				return fmt.Errorf(".WORD expects exactly one operand on line %d", lineNo)
			}
			address += 2

		default:
			if !isMnemonic(p.mnemonic) {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			address += 2
		}

		if address > cpu.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		sourceMap[uint16(len(program))] = lineNo

		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p.operands, lineNo)
			if err != nil {
				return nil, nil, err
			}
			padding := int(target) - cpu.ProgramStart - len(program)
			if padding < 0 {
				return nil, nil, fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			program = append(program, make([]byte, padding)...)

		case ".BYTE":
			for _, op := range p.operands {
				val, err := a.parseImmediate(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}

		case ".WORD":
			val, err := a.parseImmediate(p.operands[0], 0xFFFF, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, byte(val>>8), byte(val&0xFF))

		default:
			instr, err := a.encode(p.mnemonic, p.operands, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, byte(instr>>8), byte(instr&0xFF))
		}
	}

	return program, sourceMap, nil
}

// encode assembles one instruction into its big-endian instruction word.
func (a *Assembler) encode(mnemonic string, ops []string, lineNo int) (uint16, error) {
	if base, ok := zeroOperandOps[mnemonic]; ok {
		if len(ops) != 0 {
			return 0, fmt.Errorf("%s expects 0 operands on line %d", mnemonic, lineNo)
		}
		return base, nil
	}

	if base, ok := twoRegisterOps[mnemonic]; ok {
		if len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 2 operands on line %d", mnemonic, lineNo)
		}
		x, y, err := parseRegisterPair(ops, lineNo)
		if err != nil {
			return 0, err
		}
		return base | x<<8 | y<<4, nil
	}

	if base, ok := shiftOps[mnemonic]; ok {
		if len(ops) != 1 && len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 1 or 2 operands on line %d", mnemonic, lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		var y uint16
		if len(ops) == 2 {
			if y, err = parseRegister(ops[1], lineNo); err != nil {
				return 0, err
			}
		}
		return base | x<<8 | y<<4, nil
	}

	if base, ok := oneRegisterOps[mnemonic]; ok {
		if len(ops) != 1 {
			return 0, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		return base | x<<8, nil
	}

	if base, ok := addressOps[mnemonic]; ok {
		if len(ops) != 1 {
			return 0, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
		}
		addr, err := a.parseImmediate(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return base | addr, nil
	}

	switch mnemonic {
	case "JP":
		return a.encodeJump(ops, lineNo)
	case "SE":
		return a.encodeSkip(ops, 0x3000, 0x5000, lineNo, mnemonic)
	case "SNE":
		return a.encodeSkip(ops, 0x4000, 0x9000, lineNo, mnemonic)
	case "LD":
		return a.encodeLoad(ops, lineNo)
	case "ADD":
		return a.encodeAdd(ops, lineNo)
	case "RND":
		if len(ops) != 2 {
			return 0, fmt.Errorf("RND expects 2 operands on line %d", lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		kk, err := a.parseImmediate(ops[1], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0xC000 | x<<8 | kk, nil
	case "DRW":
		if len(ops) != 3 {
			return 0, fmt.Errorf("DRW expects 3 operands on line %d", lineNo)
		}
		x, y, err := parseRegisterPair(ops[:2], lineNo)
		if err != nil {
			return 0, err
		}
		n, err := a.parseImmediate(ops[2], 0xF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0xD000 | x<<8 | y<<4 | n, nil
	}

	return 0, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
}

func (a *Assembler) encodeJump(ops []string, lineNo int) (uint16, error) {
	switch len(ops) {
	case 1:
		addr, err := a.parseImmediate(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0x1000 | addr, nil
	case 2:
		if x, err := parseRegister(ops[0], lineNo); err != nil || x != 0 {
			return 0, fmt.Errorf("JP with offset expects V0 on line %d", lineNo)
		}
		addr, err := a.parseImmediate(ops[1], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0xB000 | addr, nil
	default:
		return 0, fmt.Errorf("JP expects 1 or 2 operands on line %d", lineNo)
	}
}

// encodeSkip picks the register/immediate or register/register form.
func (a *Assembler) encodeSkip(ops []string, immBase, regBase uint16, lineNo int, mnemonic string) (uint16, error) {
	if len(ops) != 2 {
		return 0, fmt.Errorf("%s expects 2 operands on line %d", mnemonic, lineNo)
	}
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	if isRegister(ops[1]) {
		y, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return regBase | x<<8 | y<<4, nil
	}
	kk, err := a.parseImmediate(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return immBase | x<<8 | kk, nil
}

func (a *Assembler) encodeLoad(ops []string, lineNo int) (uint16, error) {
	if len(ops) != 2 {
		return 0, fmt.Errorf("LD expects 2 operands on line %d", lineNo)
	}
	dst, src := strings.ToUpper(ops[0]), strings.ToUpper(ops[1])

	// Destinations that take a register source.
	srcForms := map[string]uint16{
		operandDT:    0xF015,
		operandST:    0xF018,
		operandF:     0xF029,
		operandB:     0xF033,
		operandIndir: 0xF055,
	}
	if base, ok := srcForms[dst]; ok {
		x, err := parseRegister(src, lineNo)
		if err != nil {
			return 0, err
		}
		return base | x<<8, nil
	}

	if dst == operandI {
		addr, err := a.parseImmediate(ops[1], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0xA000 | addr, nil
	}

	x, err := parseRegister(dst, lineNo)
	if err != nil {
		return 0, err
	}
	switch {
	case src == operandDT:
		return 0xF007 | x<<8, nil
	case src == operandK:
		return 0xF00A | x<<8, nil
	case src == operandIndir:
		return 0xF065 | x<<8, nil
	case isRegister(src):
		y, err := parseRegister(src, lineNo)
		if err != nil {
			return 0, err
		}
		return 0x8000 | x<<8 | y<<4, nil
	}
	kk, err := a.parseImmediate(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0x6000 | x<<8 | kk, nil
}

func (a *Assembler) encodeAdd(ops []string, lineNo int) (uint16, error) {
	if len(ops) != 2 {
		return 0, fmt.Errorf("ADD expects 2 operands on line %d", lineNo)
	}
	if strings.EqualFold(ops[0], operandI) {
		x, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return 0xF01E | x<<8, nil
	}
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	if isRegister(ops[1]) {
		y, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return 0x8004 | x<<8 | y<<4, nil
	}
	kk, err := a.parseImmediate(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0x7000 | x<<8 | kk, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if beforeColon == "" {
			return p, fmt.Errorf("invalid label on line %d", lineNo)
		}

		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

// normalizeInstructionText turns operand separators into whitespace. The
// brackets of [I] are kept so it stays distinct from I.
func normalizeInstructionText(line string) string {
	replacer := strings.NewReplacer(",", " ", "[ ", "[", " ]", "]")
	return replacer.Replace(line)
}

func parseOrigin(ops []string, lineNo int) (uint32, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := strconv.ParseUint(ops[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, ops[0])
	}
	if target < cpu.ProgramStart || target >= cpu.MemorySize {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, ops[0])
	}
	return uint32(target), nil
}

func isRegister(token string) bool {
	_, err := parseRegister(token, 0)
	return err == nil
}

// parseRegister accepts V0 through VF, case-insensitively.
func parseRegister(token string, lineNo int) (uint16, error) {
	if len(token) == 2 && (token[0] == 'V' || token[0] == 'v') {
		if n, err := strconv.ParseUint(token[1:], 16, 8); err == nil {
			return uint16(n), nil
		}
	}
	return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
}

func parseRegisterPair(ops []string, lineNo int) (uint16, uint16, error) {
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseRegister(ops[1], lineNo)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// parseImmediate resolves a numeric literal or label no larger than limit.
func (a *Assembler) parseImmediate(token string, limit uint16, lineNo int) (uint16, error) {
	if value, err := strconv.ParseUint(token, 0, 32); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if addr > limit {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func isMnemonic(mnemonic string) bool {
	mnemonic = strings.ToUpper(mnemonic)

	for _, table := range []map[string]uint16{zeroOperandOps, twoRegisterOps, shiftOps, oneRegisterOps, addressOps} {
		if _, ok := table[mnemonic]; ok {
			return true
		}
	}
	switch mnemonic {
	case "JP", "SE", "SNE", "LD", "ADD", "RND", "DRW":
		return true
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
