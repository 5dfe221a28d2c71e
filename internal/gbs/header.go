// Package gbs parses the fixed 0x70-byte header of a GBS v1 file and
// exposes the parameters the simulator needs to drive it.
package gbs

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash"
)

const (
	headerSize = 0x70

	offMagic      = 0x00
	offVersion    = 0x03
	offNbSongs    = 0x04
	offFirstSong  = 0x05
	offLoadAddr   = 0x06
	offInitAddr   = 0x08
	offPlayAddr   = 0x0A
	offStackPtr   = 0x0C
	offTimerMod   = 0x0E
	offTimerCtrl  = 0x0F
	offTitle      = 0x10
	offAuthor     = 0x30
	offCopyright  = 0x50
	metadataLen   = 32
	supportedVer  = 1
	minLoadAddr   = 0x400
	maxLoadAddr   = 0x4000
	playableCeil  = 0x8000 // init/play must fall strictly below this
)

// Header is a parsed, immutable view over a GBS v1 blob. It borrows the
// blob's ROM payload rather than copying it.
type Header struct {
	nbSongs    uint8
	firstSong  uint8
	loadAddr   uint16
	initAddr   uint16
	playAddr   uint16
	stackPtr   uint16
	timerMod   uint8
	timerCtrl  uint8
	title      string
	author     string
	copyright  string
	rom        []byte
	fingerprint uint64
}

// AddressKind names which header address failed validation, for BadAddress.
type AddressKind int

const (
	AddressLoad AddressKind = iota
	AddressInit
	AddressPlay
)

func (k AddressKind) String() string {
	switch k {
	case AddressLoad:
		return "load"
	case AddressInit:
		return "init"
	case AddressPlay:
		return "play"
	default:
		return "unknown"
	}
}

// Parse validates and parses a GBS v1 blob, returning a *FormatError (via
// the error interface) on any violation of the fixed layout.
func Parse(data []byte) (*Header, error) {
	if len(data) < headerSize {
		return nil, &FormatError{Kind: TruncatedHeader, Len: len(data)}
	}
	if string(data[offMagic:offMagic+3]) != "GBS" {
		return nil, &FormatError{Kind: BadMagic, Magic: [3]byte(data[offMagic : offMagic+3])}
	}
	if data[offVersion] != supportedVer {
		return nil, &FormatError{Kind: UnsupportedVersion, Version: data[offVersion]}
	}
	if data[offNbSongs] == 0 {
		return nil, &FormatError{Kind: ZeroSongs}
	}

	h := &Header{
		nbSongs:   data[offNbSongs],
		firstSong: data[offFirstSong],
		loadAddr:  binary.LittleEndian.Uint16(data[offLoadAddr:]),
		initAddr:  binary.LittleEndian.Uint16(data[offInitAddr:]),
		playAddr:  binary.LittleEndian.Uint16(data[offPlayAddr:]),
		stackPtr:  binary.LittleEndian.Uint16(data[offStackPtr:]),
		timerMod:  data[offTimerMod],
		timerCtrl: data[offTimerCtrl],
	}

	if h.loadAddr < minLoadAddr || h.loadAddr > maxLoadAddr {
		return nil, &FormatError{Kind: BadAddress, AddrKind: AddressLoad, Addr: h.loadAddr}
	}
	if h.initAddr < h.loadAddr || h.initAddr >= playableCeil {
		return nil, &FormatError{Kind: BadAddress, AddrKind: AddressInit, Addr: h.initAddr}
	}
	if h.playAddr < h.loadAddr || h.playAddr >= playableCeil {
		return nil, &FormatError{Kind: BadAddress, AddrKind: AddressPlay, Addr: h.playAddr}
	}

	h.title = readCString(data[offTitle : offTitle+metadataLen])
	h.author = readCString(data[offAuthor : offAuthor+metadataLen])
	h.copyright = readCString(data[offCopyright : offCopyright+metadataLen])
	h.rom = data[headerSize:]
	h.fingerprint = xxhash.Sum64(h.rom)

	return h, nil
}

// readCString trims the NUL padding and any trailing whitespace from a
// fixed-width metadata field; the title/author/copyright strings are
// opaque to simulation and only ever used for diagnostics.
func readCString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}

// NbSongs returns the number of songs in the file (1-255).
func (h *Header) NbSongs() uint8 { return h.nbSongs }

// FirstSong returns the 0-based index of the first song to play.
func (h *Header) FirstSong() uint8 { return h.firstSong }

// LoadAddr returns the address the ROM payload is mapped to.
func (h *Header) LoadAddr() uint16 { return h.loadAddr }

// InitAddr returns the entry point for the INIT phase.
func (h *Header) InitAddr() uint16 { return h.initAddr }

// PlayAddr returns the entry point for the PLAY phase.
func (h *Header) PlayAddr() uint16 { return h.playAddr }

// StackPtr returns the stack pointer value LOAD/INIT/PLAY are invoked with.
func (h *Header) StackPtr() uint16 { return h.stackPtr }

// TimerMod returns the raw timer modulo byte.
func (h *Header) TimerMod() uint8 { return h.timerMod }

// TimerCtrl returns the raw timer control byte.
func (h *Header) TimerCtrl() uint8 { return h.timerCtrl }

// UseTimer reports whether the driver wants PLAY paced by the configured
// timer rather than by the default 59.7 Hz video-frame cadence.
func (h *Header) UseTimer() bool {
	return h.timerCtrl&0x04 != 0
}

// DoubleSpeed reports the double-speed bit. Informational only: it does
// not alter the cycles-per-tick computation (see internal/sim).
func (h *Header) DoubleSpeed() bool {
	return h.timerCtrl&0x80 != 0
}

// TimerDivBit returns the DIV bit selected by the low 2 bits of timer_ctrl,
// mapped 0..3 -> 9,3,5,7.
func (h *Header) TimerDivBit() uint {
	switch h.timerCtrl & 0x03 {
	case 0:
		return 9
	case 1:
		return 3
	case 2:
		return 5
	default:
		return 7
	}
}

// ROM returns the ROM payload (everything past the header).
func (h *Header) ROM() []byte { return h.rom }

// Title, Author, and Copyright return the opaque metadata strings, used
// only for diagnostics and trace-file headers.
func (h *Header) Title() string     { return h.title }
func (h *Header) Author() string    { return h.author }
func (h *Header) Copyright() string { return h.copyright }

// Fingerprint is an xxhash64 digest of the ROM payload, used by the CLI to
// label trace files and distinguish builds; never consulted by the
// simulator itself.
func (h *Header) Fingerprint() uint64 { return h.fingerprint }
