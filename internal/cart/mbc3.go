package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC3 implements 7-bit ROM banking, 2-bit RAM banking, and the
// MBC3 real-time clock: five latched registers (seconds, minutes, hours,
// day-low, day-high/halt/carry) selected into the 0xA000-0xBFFF window
// in place of RAM banks 0x08-0x0C, advanced by Tick rather than wall
// time so a run stays reproducible across save-state loads.
type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte // 7 bits, 1..127
	ramBank    byte // 0..3, or one of the rtcReg* selectors below

	hasRTC bool
	rtc    rtcState
}

const (
	rtcRegSeconds = 0x08
	rtcRegMinutes = 0x09
	rtcRegHours   = 0x0A
	rtcRegDayLow  = 0x0B
	rtcRegDayHigh = 0x0C
)

type rtcState struct {
	Seconds, Minutes, Hours byte
	DayLow                  byte
	DayHigh                 byte // bit0 day MSB, bit6 halt, bit7 day-counter carry

	Latched    rtcLatch
	LatchSeq   byte // tracks the 0-then-1 write sequence that latches
	CycleAccum int64
}

// rtcLatch holds just the latched snapshot fields to avoid recursive
// embedding of rtcState in itself.
type rtcLatch struct {
	Seconds, Minutes, Hours, DayLow, DayHigh byte
}

const cyclesPerSecond = 4194304

func NewMBC3(rom []byte, ramSize int, hasRTC bool) *MBC3 {
	m := &MBC3{rom: rom, romBank: 1, hasRTC: hasRTC}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank)
		if bank == 0 {
			bank = 1
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		// The 0x0A enable latch gates the RTC registers and RAM alike.
		if !m.ramEnabled {
			return 0xFF
		}
		if m.hasRTC && m.ramBank >= rtcRegSeconds && m.ramBank <= rtcRegDayHigh {
			return m.readRTCRegister()
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramBank&0x03)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		if value <= 0x03 {
			m.ramBank = value & 0x03
		} else if m.hasRTC && value >= rtcRegSeconds && value <= rtcRegDayHigh {
			m.ramBank = value
		}
	case addr < 0x8000:
		if m.hasRTC {
			if m.rtc.LatchSeq == 0 && value == 1 {
				m.latchRTC()
			}
			m.rtc.LatchSeq = value
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.hasRTC && m.ramBank >= rtcRegSeconds && m.ramBank <= rtcRegDayHigh {
			m.writeRTCRegister(value)
			return
		}
		if len(m.ram) == 0 {
			return
		}
		if off := int(m.ramBank&0x03)*0x2000 + int(addr-0xA000); off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

// Tick advances the RTC by one T-cycle, called by the bus's same Tick
// loop that drives the timer and PPU, so the clock stops along with the
// rest of the machine and save states capture it exactly.
func (m *MBC3) Tick() {
	if !m.hasRTC || m.rtc.DayHigh&0x40 != 0 { // bit6: clock halted
		return
	}
	m.rtc.CycleAccum++
	for m.rtc.CycleAccum >= cyclesPerSecond {
		m.rtc.CycleAccum -= cyclesPerSecond
		m.tickSecond()
	}
}

func (m *MBC3) tickSecond() {
	m.rtc.Seconds++
	if m.rtc.Seconds < 60 {
		return
	}
	m.rtc.Seconds = 0
	m.rtc.Minutes++
	if m.rtc.Minutes < 60 {
		return
	}
	m.rtc.Minutes = 0
	m.rtc.Hours++
	if m.rtc.Hours < 24 {
		return
	}
	m.rtc.Hours = 0
	day := uint16(m.rtc.DayLow) | uint16(m.rtc.DayHigh&0x01)<<8
	day++
	if day > 0x1FF {
		day = 0
		m.rtc.DayHigh |= 0x80 // day counter carry
	}
	m.rtc.DayLow = byte(day)
	m.rtc.DayHigh = m.rtc.DayHigh&0xFE | byte(day>>8)&0x01
}

func (m *MBC3) latchRTC() {
	m.rtc.Latched = rtcLatch{
		Seconds: m.rtc.Seconds, Minutes: m.rtc.Minutes, Hours: m.rtc.Hours,
		DayLow: m.rtc.DayLow, DayHigh: m.rtc.DayHigh,
	}
}

func (m *MBC3) readRTCRegister() byte {
	l := m.rtc.Latched
	switch m.ramBank {
	case rtcRegSeconds:
		return l.Seconds
	case rtcRegMinutes:
		return l.Minutes
	case rtcRegHours:
		return l.Hours
	case rtcRegDayLow:
		return l.DayLow
	default:
		return l.DayHigh
	}
}

func (m *MBC3) writeRTCRegister(v byte) {
	switch m.ramBank {
	case rtcRegSeconds:
		m.rtc.Seconds = v
	case rtcRegMinutes:
		m.rtc.Minutes = v
	case rtcRegHours:
		m.rtc.Hours = v
	case rtcRegDayLow:
		m.rtc.DayLow = v
	default:
		m.rtc.DayHigh = v
	}
}

type mbc3State struct {
	RAM        []byte
	RamEnabled bool
	RomBank    byte
	RamBank    byte
	RTC        rtcState
}

func (m *MBC3) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc3State{
		RAM: m.ram, RamEnabled: m.ramEnabled, RomBank: m.romBank, RamBank: m.ramBank, RTC: m.rtc,
	})
	return buf.Bytes()
}

func (m *MBC3) LoadState(data []byte) {
	var s mbc3State
	if gob.NewDecoder(bytes.NewReader(data)).Decode(&s) != nil {
		return
	}
	if len(s.RAM) == len(m.ram) {
		copy(m.ram, s.RAM)
	}
	m.ramEnabled, m.romBank, m.ramBank, m.rtc = s.RamEnabled, s.RomBank, s.RamBank, s.RTC
}

func (m *MBC3) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC3) LoadRAM(data []byte) {
	if len(m.ram) == 0 || len(data) == 0 {
		return
	}
	copy(m.ram, data)
}
