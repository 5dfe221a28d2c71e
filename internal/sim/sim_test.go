package sim

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thelolagemann/gbsdiff/internal/gbs"
	"github.com/thelolagemann/gbsdiff/internal/logbook"
)

const (
	testOffLoadAddr  = 0x06
	testOffInitAddr  = 0x08
	testOffPlayAddr  = 0x0A
	testOffStackPtr  = 0x0C
	testOffTimerCtrl = 0x0F
)

func buildHeader(loadAddr, initAddr, playAddr, sp uint16, rom []byte) *gbs.Header {
	b := make([]byte, 0x70+len(rom))
	copy(b[0:3], "GBS")
	b[3] = 1    // version
	b[4] = 1    // nb_songs
	b[5] = 0    // first_song
	binary.LittleEndian.PutUint16(b[testOffLoadAddr:], loadAddr)
	binary.LittleEndian.PutUint16(b[testOffInitAddr:], initAddr)
	binary.LittleEndian.PutUint16(b[testOffPlayAddr:], playAddr)
	binary.LittleEndian.PutUint16(b[testOffStackPtr:], sp)
	copy(b[0x70:], rom)

	h, err := gbs.Parse(b)
	if err != nil {
		panic(err)
	}
	return h
}

// retWritingNR50 returns a minimal program at init/play that pokes a byte at
// 0xFF24 (NR50) then RETs immediately, to exercise the APU-write path
// without needing INIT/PLAY to do anything more elaborate.
func retWritingNR50() []byte {
	return []byte{
		0x3E, 0x77, // LD A,0x77
		0xEA, 0x24, 0xFF, // LD (0xFF24),A
		0xC9, // RET
	}
}

// An all-0xFF ROM at tick 0 is the canonical unrecognised-opcode case:
// 0xFF is never decoded as RST $38 by this Core (see decode.go), so INIT
// fails immediately with InvalidOpcode at the load address.
func TestSimulateInvalidOpcodeFails(t *testing.T) {
	rom := []byte{0xFF}
	h := buildHeader(0x400, 0x400, 0x400, 0xFFFE, rom)

	_, err := Simulate(h, 0, Config{MaxLevel: logbook.Note, SilenceTimeoutCycles: 1 << 20, TimeoutCycles: 1 << 20})

	se := &Error{}
	require.ErrorAs(t, err, &se)
	require.Equal(t, InvalidOpcode, se.Kind)
	require.Equal(t, uint8(0xFF), se.Opcode)
	require.Equal(t, uint16(0x400), se.PC)
}

func TestSimulateRunsPlayLoopUntilTimeout(t *testing.T) {
	rom := retWritingNR50()
	h := buildHeader(0x400, 0x400, 0x400, 0xDFFE, rom)

	lb, err := Simulate(h, 0, Config{
		MaxLevel:             logbook.Note,
		SilenceTimeoutCycles: 1 << 30,
		TimeoutCycles:        200000,
		AllowTimeout:         true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, lb.IoLog, "expected at least one IoAccess from INIT")
	// Every tick writes to NR50, so silence never accumulates and the run
	// only ends once the (small, test-only) timeout budget is exhausted.
}

func TestSimulateStopsOnSilenceWhenDriverGoesQuiet(t *testing.T) {
	// INIT writes once, PLAY is a bare RET that never touches the APU
	// again, so the silence timer should accumulate until it trips.
	initProgram := retWritingNR50()
	playProgram := []byte{0xC9} // RET
	rom := make([]byte, 0x200)
	copy(rom, initProgram)
	copy(rom[0x100:], playProgram)

	h := buildHeader(0x400, 0x400, 0x500, 0xDFFE, rom)

	lb, err := Simulate(h, 0, Config{
		MaxLevel:             logbook.Note,
		SilenceTimeoutCycles: 100000,
		TimeoutCycles:        1 << 30,
		AllowTimeout:         false,
	})
	require.NoError(t, err)
	require.Len(t, lb.IoLog, 1, "expected exactly 1 IoAccess (from INIT only)")
}

func TestSimulateTimeoutFailsWithoutAllowTimeout(t *testing.T) {
	rom := []byte{0xC9} // RET - INIT and PLAY both do nothing
	h := buildHeader(0x400, 0x400, 0x400, 0xDFFE, rom)

	_, err := Simulate(h, 0, Config{
		MaxLevel:             logbook.Note,
		SilenceTimeoutCycles: 1 << 30,
		TimeoutCycles:        10,
		AllowTimeout:         false,
	})

	se := &Error{}
	require.ErrorAs(t, err, &se)
	require.Equal(t, Timeout, se.Kind)
}

func TestSimulateTimeoutSucceedsWhenAllowed(t *testing.T) {
	rom := []byte{0xC9}
	h := buildHeader(0x400, 0x400, 0x400, 0xDFFE, rom)

	_, err := Simulate(h, 0, Config{
		MaxLevel:             logbook.Note,
		SilenceTimeoutCycles: 1 << 30,
		TimeoutCycles:        10,
		AllowTimeout:         true,
	})
	require.NoError(t, err, "expected success with allow_timeout")
}

func TestSimulateWatchStopsRun(t *testing.T) {
	// INIT writes 1 to WRAM address 0xC000, PLAY never changes it again.
	rom := []byte{
		0x3E, 0x01, // LD A,1
		0xEA, 0x00, 0xC0, // LD (0xC000),A
		0xC9, // RET
	}
	h := buildHeader(0x400, 0x400, 0x400, 0xDFFE, rom)

	_, err := Simulate(h, 0, Config{
		MaxLevel:             logbook.Note,
		SilenceTimeoutCycles: 1 << 30,
		TimeoutCycles:        2,
		AllowTimeout:         false,
		Watch:                &WatchPoint{Addr: 0xC000, Value: 0x01},
	})
	require.NoError(t, err, "expected watch to stop the run successfully")
}

func TestSimulateHaltFails(t *testing.T) {
	rom := []byte{0x76} // HALT
	h := buildHeader(0x400, 0x400, 0x400, 0xDFFE, rom)

	_, err := Simulate(h, 0, Config{MaxLevel: logbook.Note, SilenceTimeoutCycles: 1 << 20, TimeoutCycles: 1 << 20})

	se := &Error{}
	require.ErrorAs(t, err, &se)
	require.Equal(t, Halted, se.Kind)
}

func TestSimulateIsDeterministic(t *testing.T) {
	rom := retWritingNR50()
	h := buildHeader(0x400, 0x400, 0x400, 0xDFFE, rom)
	cfg := Config{MaxLevel: logbook.Note, SilenceTimeoutCycles: 1 << 20, TimeoutCycles: 1 << 20, AllowTimeout: true}

	lb1, err1 := Simulate(h, 0, cfg)
	lb2, err2 := Simulate(h, 0, cfg)
	require.Equal(t, err1, err2)
	require.Equal(t, lb1.IoLog, lb2.IoLog)
}
