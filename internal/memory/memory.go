// Package memory provides the simulated 64kB address space a GBS driver
// runs against: a fixed ROM load window, a banked ROM window with a
// single-latch bank quirk, SRAM/WRAM/HRAM, the WRAM echo mirror, and the
// audio I/O band delegated to internal/apu. It is unaware of the CPU; it
// only answers Read/Write calls and records diagnostics through a
// logbook.Writer.
package memory

import (
	"github.com/thelolagemann/gbsdiff/internal/apu"
	"github.com/thelolagemann/gbsdiff/internal/logbook"
	"github.com/thelolagemann/gbsdiff/internal/ram"
)

// AddressSpace is the interface the CPU core steps against.
type AddressSpace interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

const (
	sramSize = 0x2000
	wramSize = 0x2000
	hramSize = 0x7F

	sramBase = 0xA000
	wramBase = 0xC000
	hramBase = 0xFF80
)

// GbsAddrSpace is the AddressSpace a simulation run drives the CPU
// against. It holds the ROM payload and load address for the duration of
// a song and shares a logbook.Writer and apu.APU with the rest of the
// run.
type GbsAddrSpace struct {
	rom      []byte
	loadAddr uint16

	sram *ram.Block
	wram *ram.Block
	hram *ram.Block

	apu *apu.APU
	log *logbook.Writer
}

// New returns a GbsAddrSpace over rom (the GBS payload past the header),
// mapped starting at loadAddr, sharing a with the audio band and w with
// diagnostics and the rom_bank latch.
func New(rom []byte, loadAddr uint16, a *apu.APU, w *logbook.Writer) *GbsAddrSpace {
	return &GbsAddrSpace{
		rom:      rom,
		loadAddr: loadAddr,
		sram:     ram.NewBlock(sramSize),
		wram:     ram.NewBlock(wramSize),
		hram:     ram.NewBlock(hramSize),
		apu:      a,
		log:      w,
	}
}

// Read implements AddressSpace.
func (a *GbsAddrSpace) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return a.readLowROM(address)
	case address <= 0x7FFF:
		return a.readBankedROM(address)
	case address <= 0x9FFF: // VRAM
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedRead{Addr: address})
		return 0xFF
	case address <= 0xBFFF: // SRAM
		return a.sram.Read(address - sramBase)
	case address <= 0xDFFF: // WRAM
		return a.wram.Read(address - wramBase)
	case address <= 0xFDFF: // echo RAM
		a.log.Diagnose(logbook.Note, logbook.EchoRamRead{Addr: address})
		return a.wram.Read((address - 0xE000) % wramSize)
	case address <= 0xFEFF: // OAM stub
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedRead{Addr: address})
		return 0xFF
	case address <= 0xFF7F: // APU band
		if v, ok := a.apu.Read(address); ok {
			if apu.IsUndefinedHole(address) {
				a.log.Diagnose(logbook.Note, logbook.UnsupportedRead{Addr: address})
			}
			return v
		}
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedRead{Addr: address})
		return 0xFF
	case address <= 0xFFFE: // HRAM
		return a.hram.Read(address - hramBase)
	default: // 0xFFFF
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedRead{Addr: address})
		return 0xFF
	}
}

// Write implements AddressSpace.
func (a *GbsAddrSpace) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedWrite{Addr: address, Data: value})
	case address <= 0x3FFF:
		// rom_bank latch. A write of 0 is still flagged, but the literal
		// value is latched anyway - this matches the source's behaviour
		// rather than a real MBC's remap-to-1 quirk.
		if value == 0 {
			a.log.Diagnose(logbook.Warning, logbook.UnsupportedWrite{Addr: address, Data: value})
		}
		a.log.RomBank = value
	case address <= 0x7FFF:
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedWrite{Addr: address, Data: value})
	case address <= 0x9FFF: // VRAM
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedWrite{Addr: address, Data: value})
	case address <= 0xBFFF: // SRAM
		a.sram.Write(address-sramBase, value)
	case address <= 0xDFFF: // WRAM
		a.wram.Write(address-wramBase, value)
	case address <= 0xFDFF: // echo RAM
		a.log.Diagnose(logbook.Note, logbook.EchoRamWrite{Addr: address, Data: value})
		a.wram.Write((address-0xE000)%wramSize, value)
	case address <= 0xFEFF: // OAM stub
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedWrite{Addr: address, Data: value})
	case address <= 0xFF7F: // APU band
		if !a.apu.Write(address, value) {
			a.log.Diagnose(logbook.Warning, logbook.UnsupportedWrite{Addr: address, Data: value})
			return
		}
		a.log.Log(address, value)
		if apu.IsUndefinedHole(address) {
			a.log.Diagnose(logbook.Note, logbook.UnsupportedWrite{Addr: address, Data: value})
		}
	case address <= 0xFFFE: // HRAM
		a.hram.Write(address-hramBase, value)
	default: // 0xFFFF
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedWrite{Addr: address, Data: value})
	}
}

// readLowROM answers the fixed 0x0000-0x3FFF window, which always maps to
// the start of the ROM payload at load_addr.
func (a *GbsAddrSpace) readLowROM(address uint16) uint8 {
	if address < a.loadAddr {
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedRead{Addr: address})
		return 0xFF
	}
	off := int(address - a.loadAddr)
	if off >= len(a.rom) {
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedRead{Addr: address})
		return 0xFF
	}
	return a.rom[off]
}

// readBankedROM answers the 0x4000-0x7FFF window, which maps to
// rom_bank*0x4000 + (addr-0x4000) - load_addr. Out-of-bounds reads here
// return 0x00, not 0xFF - an asymmetry the source exhibits and this
// simulator replicates rather than "fixes".
func (a *GbsAddrSpace) readBankedROM(address uint16) uint8 {
	off := int(a.log.RomBank)*0x4000 + int(address-0x4000) - int(a.loadAddr)
	if off < 0 || off >= len(a.rom) {
		a.log.Diagnose(logbook.Warning, logbook.UnsupportedRead{Addr: address})
		return 0x00
	}
	return a.rom[off]
}
