package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/thelolagemann/gbsdiff/pkg/log"
)

const (
	testOffLoadAddr = 0x06
	testOffInitAddr = 0x08
	testOffPlayAddr = 0x0A
	testOffStackPtr = 0x0C
)

func buildGBS(t *testing.T, loadAddr, initAddr, playAddr, sp uint16, rom []byte) string {
	t.Helper()
	b := make([]byte, 0x70+len(rom))
	copy(b[0:3], "GBS")
	b[3] = 1
	b[4] = 1
	b[5] = 0
	binary.LittleEndian.PutUint16(b[testOffLoadAddr:], loadAddr)
	binary.LittleEndian.PutUint16(b[testOffInitAddr:], initAddr)
	binary.LittleEndian.PutUint16(b[testOffPlayAddr:], playAddr)
	binary.LittleEndian.PutUint16(b[testOffStackPtr:], sp)
	copy(b[0x70:], rom)

	f, err := os.CreateTemp(t.TempDir(), "*.gbs")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(b); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return f.Name()
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestRunReportsOtherValueDiagnostic(t *testing.T) {
	color.NoColor = true

	// Same program shape, different NR50 value written.
	beforeROM := []byte{0x3E, 0x77, 0xEA, 0x24, 0xFF, 0xC9} // LD A,0x77; LD ($FF24),A; RET
	afterROM := []byte{0x3E, 0x70, 0xEA, 0x24, 0xFF, 0xC9}  // LD A,0x70; LD ($FF24),A; RET

	before := buildGBS(t, 0x400, 0x400, 0x400, 0xDFFE, beforeROM)
	after := buildGBS(t, 0x400, 0x400, 0x400, 0xDFFE, afterROM)

	o := options{
		maxLevel:     "note",
		maxReports:   1000,
		timeoutSecs:  1,
		allowTimeout: true,
		silenceSecs:  1,
		printDiag:    "none",
		jitter:       20,
		colorMode:    "never",
	}

	var runErr error
	out := captureStdout(t, func() {
		runErr = run(before, after, o, log.NewNullLogger())
	})

	if runErr != errFailed {
		t.Fatalf("expected errFailed, got %v", runErr)
	}
	if !strings.Contains(out, "value changed") {
		t.Errorf("expected an OtherValue diagnostic in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Failing") {
		t.Errorf("expected a Failing summary line, got:\n%s", out)
	}
}

func TestRunReportsOKForIdenticalBuilds(t *testing.T) {
	color.NoColor = true

	rom := []byte{0x3E, 0x77, 0xEA, 0x24, 0xFF, 0xC9}
	before := buildGBS(t, 0x400, 0x400, 0x400, 0xDFFE, rom)
	after := buildGBS(t, 0x400, 0x400, 0x400, 0xDFFE, rom)

	o := options{
		maxLevel:     "note",
		maxReports:   1000,
		timeoutSecs:  1,
		allowTimeout: true,
		silenceSecs:  1,
		printDiag:    "none",
		jitter:       20,
		colorMode:    "never",
	}

	var runErr error
	out := captureStdout(t, func() {
		runErr = run(before, after, o, log.NewNullLogger())
	})

	if runErr != nil {
		t.Fatalf("expected nil error for identical builds, got %v", runErr)
	}
	if !strings.Contains(out, "All songs are OK!") {
		t.Errorf("expected an all-clear summary, got:\n%s", out)
	}
}
