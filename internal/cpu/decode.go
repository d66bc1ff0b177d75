package cpu

import "fmt"

// Op tags every distinct instruction effect the executor knows how to
// perform. Decode is a pure function of the opcode stream; it never
// touches CPU or bus state.
type Op int

const (
	OpNOP Op = iota
	OpHALT
	OpSTOP
	OpDI
	OpEI
	OpDAA
	OpCPL
	OpSCF
	OpCCF

	OpLdRR        // Reg <- Reg2
	OpLdRImm8     // Reg <- Imm8
	OpLdPairImm16 // Pair <- Imm16 (BC/DE/HL/SP)

	OpLdMemBCFromA
	OpLdMemDEFromA
	OpLdAFromMemBC
	OpLdAFromMemDE
	OpLdMemHLFromAInc
	OpLdAFromMemHLInc
	OpLdMemHLFromADec
	OpLdAFromMemHLDec
	OpLdMemHLFromReg // (HL) <- Reg
	OpLdRegFromMemHL // Reg <- (HL)
	OpLdMemHLImm8    // (HL) <- Imm8

	OpLdMemImm16FromA
	OpLdAFromMemImm16
	OpLdMemImm16FromSP
	OpLdhMemImm8FromA
	OpLdhAFromMemImm8
	OpLdMemCFromA
	OpLdAFromMemC
	OpLdHLSPSigned
	OpLdSPFromHL

	OpAddAReg
	OpAddAImm8
	OpAdcAReg
	OpAdcAImm8
	OpSubAReg
	OpSubAImm8
	OpSbcAReg
	OpSbcAImm8
	OpAndAReg
	OpAndAImm8
	OpXorAReg
	OpXorAImm8
	OpOrAReg
	OpOrAImm8
	OpCpAReg
	OpCpAImm8

	OpIncReg
	OpDecReg
	OpIncMemHL
	OpDecMemHL
	OpIncPair
	OpDecPair
	OpAddHLPair
	OpAddSPSigned

	OpRLCA
	OpRRCA
	OpRLA
	OpRRA

	OpJpImm16
	OpJpCond
	OpJpHL
	OpJrImm8
	OpJrCond
	OpCallImm16
	OpCallCond
	OpRet
	OpRetCond
	OpRetI
	OpRst
	OpPush
	OpPop

	OpCBShift // RLC/RRC/RL/RR/SLA/SRA/SWAP/SRL, kind in CBKind
	OpCBBit
	OpCBRes
	OpCBSet
)

// Condition is the closed set of branch conditions the decoder can emit.
type Condition int

const (
	CondAlways Condition = iota
	CondZero
	CondNotZero
	CondCarry
	CondNotCarry
)

// ShiftKind enumerates the eight CB rotate/shift/swap operations (bits 5-3
// of a CB opcode when the top two bits of the opcode are 00).
type ShiftKind int

const (
	ShiftRLC ShiftKind = iota
	ShiftRRC
	ShiftRL
	ShiftRR
	ShiftSLA
	ShiftSRA
	ShiftSwap
	ShiftSRL
)

// Instruction is the decoder's output: a tagged record naming the effect
// and carrying whichever operand fields that effect needs.
type Instruction struct {
	Op    Op
	Reg   Reg8   // primary register operand
	Reg2  Reg8   // secondary register operand (LD r,r')
	Pair  Reg16  // 16-bit register pair operand
	Stack Reg16Stack
	Cond  Condition
	Imm8  byte
	Imm16 uint16
	Bit   byte // BIT/RES/SET bit index 0..7
	Shift ShiftKind
	Size  int // encoded length in bytes, including any CB prefix byte
}

// regTable maps the 3-bit register field used throughout the main and CB
// tables to a Reg8, in hardware's canonical order.
var regTable = [8]Reg8{RegB, RegC, RegD, RegE, RegH, RegL, RegHLInd, RegA}

var pairTable = [4]Reg16{RegBC, RegDE, RegHL, RegSP}
var stackTable = [4]Reg16Stack{StackBC, StackDE, StackHL, StackAF}

var condTable = [4]Condition{CondNotZero, CondZero, CondNotCarry, CondCarry}

// SizeOf returns the encoded length of the instruction starting with this
// opcode byte: 1-3 bytes, or 2 for any CB-prefixed opcode (the caller
// passes 0xCB itself here; the CB operand byte is accounted separately).
func SizeOf(opcode byte) int {
	switch opcode {
	case 0xCB:
		return 2
	}
	if _, ok := size3[opcode]; ok {
		return 3
	}
	if _, ok := size2[opcode]; ok {
		return 2
	}
	return 1
}

var size3 = map[byte]bool{
	0x01: true, 0x11: true, 0x21: true, 0x31: true, // LD rr,d16
	0x08:                                     true, // LD (a16),SP
	0xC2: true, 0xC3: true, 0xCA: true, 0xD2: true, 0xDA: true, // JP
	0xC4: true, 0xCC: true, 0xCD: true, 0xD4: true, 0xDC: true, // CALL
	0xEA: true, 0xFA: true, // LD (a16),A / A,(a16)
}

var size2 = map[byte]bool{
	0x06: true, 0x0E: true, 0x16: true, 0x1E: true, 0x26: true, 0x2E: true, 0x36: true, 0x3E: true, // LD r,d8
	0x18: true, 0x20: true, 0x28: true, 0x30: true, 0x38: true, // JR
	0xC6: true, 0xCE: true, 0xD6: true, 0xDE: true, 0xE6: true, 0xEE: true, 0xF6: true, 0xFE: true, // ALU A,d8
	0xE0: true, 0xF0: true, // LDH
	0xE8: true, 0xF8: true, // ADD SP,r8 / LD HL,SP+r8
}

// Decode turns a main-table opcode (not 0xCB) plus its immediates into an
// Instruction. imm8/imm16 must be populated by the caller from the bytes
// following the opcode per SizeOf; unused immediates are ignored.
func Decode(opcode byte, imm8 byte, imm16 uint16) Instruction {
	size := SizeOf(opcode)
	base := Instruction{Size: size, Imm8: imm8, Imm16: imm16}

	switch opcode {
	case 0x00:
		base.Op = OpNOP
		return base
	case 0x76:
		base.Op = OpHALT
		return base
	case 0x10:
		base.Op = OpSTOP
		return base
	case 0xF3:
		base.Op = OpDI
		return base
	case 0xFB:
		base.Op = OpEI
		return base
	case 0x27:
		base.Op = OpDAA
		return base
	case 0x2F:
		base.Op = OpCPL
		return base
	case 0x37:
		base.Op = OpSCF
		return base
	case 0x3F:
		base.Op = OpCCF
		return base
	case 0x07:
		base.Op = OpRLCA
		return base
	case 0x0F:
		base.Op = OpRRCA
		return base
	case 0x17:
		base.Op = OpRLA
		return base
	case 0x1F:
		base.Op = OpRRA
		return base

	case 0x01, 0x11, 0x21, 0x31:
		base.Op = OpLdPairImm16
		base.Pair = pairTable[(opcode>>4)&3]
		return base
	case 0x08:
		base.Op = OpLdMemImm16FromSP
		return base
	case 0x02:
		base.Op = OpLdMemBCFromA
		return base
	case 0x12:
		base.Op = OpLdMemDEFromA
		return base
	case 0x0A:
		base.Op = OpLdAFromMemBC
		return base
	case 0x1A:
		base.Op = OpLdAFromMemDE
		return base
	case 0x22:
		base.Op = OpLdMemHLFromAInc
		return base
	case 0x2A:
		base.Op = OpLdAFromMemHLInc
		return base
	case 0x32:
		base.Op = OpLdMemHLFromADec
		return base
	case 0x3A:
		base.Op = OpLdAFromMemHLDec
		return base
	case 0x36:
		base.Op = OpLdMemHLImm8
		return base
	case 0xEA:
		base.Op = OpLdMemImm16FromA
		return base
	case 0xFA:
		base.Op = OpLdAFromMemImm16
		return base
	case 0xE0:
		base.Op = OpLdhMemImm8FromA
		return base
	case 0xF0:
		base.Op = OpLdhAFromMemImm8
		return base
	case 0xE2:
		base.Op = OpLdMemCFromA
		return base
	case 0xF2:
		base.Op = OpLdAFromMemC
		return base
	case 0xF8:
		base.Op = OpLdHLSPSigned
		return base
	case 0xF9:
		base.Op = OpLdSPFromHL
		return base
	case 0xE8:
		base.Op = OpAddSPSigned
		return base

	case 0x03, 0x13, 0x23, 0x33:
		base.Op = OpIncPair
		base.Pair = pairTable[(opcode>>4)&3]
		return base
	case 0x0B, 0x1B, 0x2B, 0x3B:
		base.Op = OpDecPair
		base.Pair = pairTable[(opcode>>4)&3]
		return base
	case 0x09, 0x19, 0x29, 0x39:
		base.Op = OpAddHLPair
		base.Pair = pairTable[(opcode>>4)&3]
		return base

	case 0xC3:
		base.Op = OpJpImm16
		base.Cond = CondAlways
		return base
	case 0xE9:
		base.Op = OpJpHL
		return base
	case 0xC2, 0xCA, 0xD2, 0xDA:
		base.Op = OpJpCond
		base.Cond = condTable[(opcode>>3)&3]
		return base
	case 0x18:
		base.Op = OpJrImm8
		base.Cond = CondAlways
		return base
	case 0x20, 0x28, 0x30, 0x38:
		base.Op = OpJrCond
		base.Cond = condTable[(opcode>>3)&3]
		return base
	case 0xCD:
		base.Op = OpCallImm16
		base.Cond = CondAlways
		return base
	case 0xC4, 0xCC, 0xD4, 0xDC:
		base.Op = OpCallCond
		base.Cond = condTable[(opcode>>3)&3]
		return base
	case 0xC9:
		base.Op = OpRet
		return base
	case 0xC0, 0xC8, 0xD0, 0xD8:
		base.Op = OpRetCond
		base.Cond = condTable[(opcode>>3)&3]
		return base
	case 0xD9:
		base.Op = OpRetI
		return base
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		base.Op = OpRst
		base.Imm8 = opcode & 0x38
		return base
	case 0xC5, 0xD5, 0xE5, 0xF5:
		base.Op = OpPush
		base.Stack = stackTable[(opcode>>4)&3]
		return base
	case 0xC1, 0xD1, 0xE1, 0xF1:
		base.Op = OpPop
		base.Stack = stackTable[(opcode>>4)&3]
		return base
	}

	// LD r,d8 (x6 column: 06,0E,16,1E,26,2E,36,3E already special-cased above for (HL))
	if opcode&0xC7 == 0x06 {
		base.Op = OpLdRImm8
		base.Reg = regTable[(opcode>>3)&7]
		return base
	}
	// LD r,r' block 0x40-0x7F (0x76 already handled as HALT above)
	if opcode >= 0x40 && opcode <= 0x7F {
		dst := regTable[(opcode>>3)&7]
		src := regTable[opcode&7]
		switch {
		case dst == RegHLInd:
			base.Op = OpLdMemHLFromReg
			base.Reg = src
		case src == RegHLInd:
			base.Op = OpLdRegFromMemHL
			base.Reg = dst
		default:
			base.Op = OpLdRR
			base.Reg = dst
			base.Reg2 = src
		}
		return base
	}
	// INC/DEC r, (HL)
	if opcode&0xC7 == 0x04 {
		reg := regTable[(opcode>>3)&7]
		if reg == RegHLInd {
			base.Op = OpIncMemHL
		} else {
			base.Op = OpIncReg
			base.Reg = reg
		}
		return base
	}
	if opcode&0xC7 == 0x05 {
		reg := regTable[(opcode>>3)&7]
		if reg == RegHLInd {
			base.Op = OpDecMemHL
		} else {
			base.Op = OpDecReg
			base.Reg = reg
		}
		return base
	}
	// 8-bit ALU block 0x80-0xBF
	if isALUBlock(opcode) {
		base.Reg = regTable[opcode&7]
		switch (opcode >> 3) & 7 {
		case 0:
			base.Op = OpAddAReg
		case 1:
			base.Op = OpAdcAReg
		case 2:
			base.Op = OpSubAReg
		case 3:
			base.Op = OpSbcAReg
		case 4:
			base.Op = OpAndAReg
		case 5:
			base.Op = OpXorAReg
		case 6:
			base.Op = OpOrAReg
		case 7:
			base.Op = OpCpAReg
		}
		return base
	}
	switch opcode {
	case 0xC6:
		base.Op = OpAddAImm8
		return base
	case 0xCE:
		base.Op = OpAdcAImm8
		return base
	case 0xD6:
		base.Op = OpSubAImm8
		return base
	case 0xDE:
		base.Op = OpSbcAImm8
		return base
	case 0xE6:
		base.Op = OpAndAImm8
		return base
	case 0xEE:
		base.Op = OpXorAImm8
		return base
	case 0xF6:
		base.Op = OpOrAImm8
		return base
	case 0xFE:
		base.Op = OpCpAImm8
		return base
	}

	panic(fmt.Sprintf("cpu: undefined opcode 0x%02X", opcode))
}

func isALUBlock(opcode byte) bool { return opcode >= 0x80 && opcode <= 0xBF }

// DecodeCB decodes one of the 256 CB-prefixed opcodes.
func DecodeCB(cb byte) Instruction {
	reg := regTable[cb&7]
	y := (cb >> 3) & 7
	group := (cb >> 6) & 3
	inst := Instruction{Reg: reg, Bit: y, Size: 2}
	switch group {
	case 0:
		inst.Op = OpCBShift
		inst.Shift = ShiftKind(y)
	case 1:
		inst.Op = OpCBBit
	case 2:
		inst.Op = OpCBRes
	case 3:
		inst.Op = OpCBSet
	}
	return inst
}
