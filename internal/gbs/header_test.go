package gbs

import (
	"encoding/binary"
	"testing"
)

// buildHeader returns a minimal, valid 0x70-byte GBS header followed by
// the given ROM payload, with load/init/play addresses set as given.
func buildHeader(load, init, play, sp uint16, nbSongs, timerCtrl byte, rom []byte) []byte {
	b := make([]byte, headerSize+len(rom))
	copy(b[0:3], "GBS")
	b[offVersion] = 1
	b[offNbSongs] = nbSongs
	b[offFirstSong] = 0
	binary.LittleEndian.PutUint16(b[offLoadAddr:], load)
	binary.LittleEndian.PutUint16(b[offInitAddr:], init)
	binary.LittleEndian.PutUint16(b[offPlayAddr:], play)
	binary.LittleEndian.PutUint16(b[offStackPtr:], sp)
	b[offTimerCtrl] = timerCtrl
	copy(b[headerSize:], rom)
	return b
}

func TestParseValidHeader(t *testing.T) {
	blob := buildHeader(0x400, 0x400, 0x406, 0xDFFF, 1, 0, []byte{0xFF})

	h, err := Parse(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.LoadAddr() != 0x400 || h.InitAddr() != 0x400 || h.PlayAddr() != 0x406 {
		t.Errorf("unexpected addresses: load=%04x init=%04x play=%04x", h.LoadAddr(), h.InitAddr(), h.PlayAddr())
	}
	if h.NbSongs() != 1 {
		t.Errorf("expected 1 song, got %d", h.NbSongs())
	}
	if len(h.ROM()) != 1 {
		t.Errorf("expected 1-byte ROM payload, got %d", len(h.ROM()))
	}
}

func TestParseTruncated(t *testing.T) {
	_, err := Parse(make([]byte, 0x50))
	assertKind(t, err, TruncatedHeader)
}

func TestParseBadMagic(t *testing.T) {
	blob := buildHeader(0x400, 0x400, 0x400, 0xDFFF, 1, 0, nil)
	blob[0] = 'X'
	_, err := Parse(blob)
	assertKind(t, err, BadMagic)
}

func TestParseUnsupportedVersion(t *testing.T) {
	blob := buildHeader(0x400, 0x400, 0x400, 0xDFFF, 1, 0, nil)
	blob[offVersion] = 2
	_, err := Parse(blob)
	assertKind(t, err, UnsupportedVersion)
}

func TestParseZeroSongs(t *testing.T) {
	blob := buildHeader(0x400, 0x400, 0x400, 0xDFFF, 0, 0, nil)
	_, err := Parse(blob)
	assertKind(t, err, ZeroSongs)
}

func TestParseBadAddresses(t *testing.T) {
	cases := []struct {
		name              string
		load, init, play  uint16
	}{
		{"load too low", 0x100, 0x100, 0x106},
		{"load too high", 0x4001, 0x4001, 0x4006},
		{"init before load", 0x500, 0x100, 0x506},
		{"play at or past 0x8000", 0x400, 0x400, 0x8000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			blob := buildHeader(c.load, c.init, c.play, 0xDFFF, 1, 0, nil)
			_, err := Parse(blob)
			assertKind(t, err, BadAddress)
		})
	}
}

func TestTimerDerivedFields(t *testing.T) {
	// bit2 set (use_timer), bit7 set (double_speed), low bits = 2 -> div bit 5
	blob := buildHeader(0x400, 0x400, 0x400, 0xDFFF, 1, 0x86, nil)
	h, err := Parse(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.UseTimer() {
		t.Error("expected use_timer to be true")
	}
	if !h.DoubleSpeed() {
		t.Error("expected double_speed to be true")
	}
	if h.TimerDivBit() != 5 {
		t.Errorf("expected timer_div_bit=5, got %d", h.TimerDivBit())
	}
}

func assertKind(t *testing.T, err error, want FormatErrorKind) {
	t.Helper()
	fe, ok := err.(*FormatError)
	if !ok {
		t.Fatalf("expected *FormatError, got %T (%v)", err, err)
	}
	if fe.Kind != want {
		t.Errorf("expected kind %d, got %d (%v)", want, fe.Kind, err)
	}
}
