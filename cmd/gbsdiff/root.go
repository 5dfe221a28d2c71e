package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thelolagemann/gbsdiff/internal/diff"
	"github.com/thelolagemann/gbsdiff/internal/gbs"
	"github.com/thelolagemann/gbsdiff/internal/logbook"
	"github.com/thelolagemann/gbsdiff/internal/sim"
	"github.com/thelolagemann/gbsdiff/pkg/log"
)

// cyclesPerSec is the reference clock used to turn the --timeout and
// --silence-timeout flags (given in seconds) into cycle budgets.
const cyclesPerSec = 1 << 20

var (
	arrow   = color.New(color.Bold)
	action  = color.New(color.FgHiCyan, color.Bold)
	failRed = color.New(color.FgHiRed, color.Bold)
	warnYel = color.New(color.FgHiYellow, color.Bold)
	okGreen = color.New(color.FgHiGreen, color.Bold)
)

type options struct {
	maxLevel       string
	maxReports     int
	timeoutSecs    uint16
	allowTimeout   bool
	silenceSecs    uint8
	watch          string
	trace          string
	printDiag      string
	jitter         uint16
	colorMode      string
}

func newRootCmd(logger log.Logger) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:           "gbsdiff BEFORE AFTER",
		Short:         "Analyze differences in audio register writes between two GBS files",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], o, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.maxLevel, "max-level", "l", "warning", "silence diagnostics with a higher level than this (error, warning, note)")
	flags.IntVarP(&o.maxReports, "max-reports", "m", 1000, "how many differences to report per song, at most")
	flags.Uint16VarP(&o.timeoutSecs, "timeout", "t", 60, "time out simulation of a song after this many seconds")
	flags.BoolVarP(&o.allowTimeout, "allow-timeout", "T", false, "make timeout non-fatal (useful for looping tracks)")
	flags.Uint8VarP(&o.silenceSecs, "silence-timeout", "s", 4, "consider that a song ended after this many seconds of silence")
	flags.StringVarP(&o.watch, "watch", "w", "", "consider that a song ended when ADDR=VALUE (both hex numbers)")
	flags.StringVar(&o.trace, "trace", "", "log CPU activity to this file (significant slowdown)")
	flags.StringVarP(&o.printDiag, "print-diagnostics", "d", "after", "print the diagnostics of \"before\", \"after\", or \"none\"")
	flags.Uint16VarP(&o.jitter, "jitter", "j", 20, "identical IO writes displaced by strictly less cycles than this are notes instead of errors")
	flags.StringVar(&o.colorMode, "color", "auto", "whether to colorize output: auto, always, never")

	return cmd
}

func parseLevel(s string) (logbook.Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return logbook.Error, nil
	case "warning":
		return logbook.Warning, nil
	case "note":
		return logbook.Note, nil
	default:
		return 0, fmt.Errorf("unknown diagnostic level %q", s)
	}
}

func parseWatch(s string) (*sim.WatchPoint, error) {
	if s == "" {
		return nil, nil
	}
	addrStr, valStr, ok := strings.Cut(s, "=")
	if !ok {
		return nil, fmt.Errorf("expected ADDR=VALUE, e.g. CAFE=2A")
	}
	addr, err := strconv.ParseUint(strings.TrimSpace(addrStr), 16, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	val, err := strconv.ParseUint(strings.TrimSpace(valStr), 16, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	return &sim.WatchPoint{Addr: uint16(addr), Value: uint8(val)}, nil
}

func levelString(l logbook.Level) string {
	switch l {
	case logbook.Error:
		return failRed.Sprint("Error")
	case logbook.Warning:
		return warnYel.Sprint("Warning")
	default:
		return color.New(color.FgHiBlue).Sprint("Note")
	}
}

type songIDs struct{ before, after uint8 }

func (s songIDs) String() string {
	if s.before == s.after {
		return fmt.Sprintf("%d", s.before)
	}
	return fmt.Sprintf("%d and %d", s.before, s.after)
}

func run(beforePath, afterPath string, o options, logger log.Logger) error {
	if o.colorMode == "never" {
		color.NoColor = true
	} else if o.colorMode == "always" {
		color.NoColor = false
	}

	maxLevel, err := parseLevel(o.maxLevel)
	if err != nil {
		return err
	}
	watch, err := parseWatch(o.watch)
	if err != nil {
		return err
	}

	var traceFile *os.File
	if o.trace != "" {
		traceFile, err = os.Create(o.trace)
		if err != nil {
			logger.Errorf("failed to open trace file %s: %v", o.trace, err)
			return fmt.Errorf("failed to open trace file: %w", err)
		}
		defer traceFile.Close()
	}

	readGBS := func(path string) (*gbs.Header, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Errorf("reading %s: %v", path, err)
			return nil, fmt.Errorf("while reading %s: %w", path, err)
		}
		h, err := gbs.Parse(data)
		if err != nil {
			logger.Errorf("parsing %s: %v", path, err)
			return nil, fmt.Errorf("while parsing %s: %w", path, err)
		}
		fmt.Printf("%s %s %s [%016x]...\n", arrow.Sprint("==>"), action.Sprint("Reading"), path, h.Fingerprint())
		logger.Debugf("parsed %s: %q by %q, %d song(s)", path, h.Title(), h.Author(), h.NbSongs())
		return h, nil
	}

	before, err := readGBS(beforePath)
	if err != nil {
		return err
	}
	after, err := readGBS(afterPath)
	if err != nil {
		return err
	}
	if traceFile != nil {
		fmt.Fprintf(traceFile, "# before: %s [%016x]\n# after:  %s [%016x]\n",
			beforePath, before.Fingerprint(), afterPath, after.Fingerprint())
	}

	nbSongs := before.NbSongs()
	if after.NbSongs() < nbSongs {
		nbSongs = after.NbSongs()
	}
	if before.NbSongs() != after.NbSongs() {
		fmt.Printf("%s: earlier GBS has %d songs, later has %d; only comparing first %d\n",
			warnYel.Sprint("warning"), before.NbSongs(), after.NbSongs(), nbSongs)
	}

	cfg := sim.Config{
		MaxLevel:             maxLevel,
		TimeoutCycles:        uint32(o.timeoutSecs) * cyclesPerSec,
		AllowTimeout:         o.allowTimeout,
		SilenceTimeoutCycles: uint32(o.silenceSecs) * cyclesPerSec,
		Watch:                watch,
		Jitter:               o.jitter,
		Trace:                traceFile,
		Logger:               logger,
	}

	var failed []songIDs
	for i := uint8(0); i < nbSongs; i++ {
		ids := songIDs{before: i + before.FirstSong(), after: i + after.FirstSong()}

		fmt.Printf("%s %s songs %s...\n", arrow.Sprint("==>"), action.Sprint("Simulating"), ids)

		beforeLog, err := sim.Simulate(before, ids.before, cfg)
		if err != nil {
			logger.Errorf("simulating %s song #%d: %v", beforePath, ids.before, err)
			fmt.Printf("%s to simulate %s song #%d: %v\n", failRed.Sprint("Failed"), beforePath, ids.before, err)
			failed = append(failed, ids)
			continue
		}
		afterLog, err := sim.Simulate(after, ids.after, cfg)
		if err != nil {
			logger.Errorf("simulating %s song #%d: %v", afterPath, ids.after, err)
			fmt.Printf("%s to simulate %s song #%d: %v\n", failRed.Sprint("Failed"), afterPath, ids.after, err)
			failed = append(failed, ids)
			continue
		}

		fmt.Printf("%s %s songs %s...\n", arrow.Sprint("==>"), action.Sprint("Comparing"), ids)

		if reportSong(beforeLog, afterLog, o, maxLevel) {
			fmt.Println(okGreen.Sprint("OK!"))
		} else {
			failed = append(failed, ids)
		}
	}

	if len(failed) == 0 {
		fmt.Printf("%s %s\n", arrow.Sprint("==>"), okGreen.Sprint("All songs are OK!"))
		return nil
	}
	if len(failed) == 1 {
		fmt.Printf("%s song: %s\n", failRed.Sprint("Failing"), failed[0])
	} else {
		parts := make([]string, len(failed))
		for i, f := range failed {
			parts[i] = f.String()
		}
		fmt.Printf("%s songs: [%s]\n", failRed.Sprint("Failing"), strings.Join(parts, ", "))
	}
	return errFailed
}

// errFailed signals a clean, already-reported failure: main exits 1 for
// it without printing it again.
var errFailed = fmt.Errorf("one or more songs failed")

func printTick(tick uint64) {
	fmt.Printf("%s Tick %d %s\n", arrow.Sprint("===="), tick, arrow.Sprint("===="))
}

// reportSong streams the diff between two logs, interleaving one side's
// own simulation diagnostics by tick the way the upstream tool does, and
// returns whether the song compared clean.
func reportSong(before, after *logbook.Logbook, o options, maxLevel logbook.Level) bool {
	var sideDiags []logbook.Diagnostic[logbook.SimKind]
	switch strings.ToLower(o.printDiag) {
	case "before":
		sideDiags = before.Diagnostics
	case "after":
		sideDiags = after.Diagnostics
	case "none":
		sideDiags = nil
	}
	sideIdx := 0

	ok := true
	var tick uint64 = ^uint64(0)
	reports := 0

	reportDiff := func(when logbook.Timestamp, pc logbook.Address, level logbook.Level, text fmt.Stringer) bool {
		fmt.Printf("%s on cycle %d (PC = $%04x): %s\n", levelString(level), when.Cycle, pc.Offset, text)
		reports++
		if reports == o.maxReports {
			fmt.Printf("...stopping at %d diagnostics. Go fix your code!\n", o.maxReports)
			return false
		}
		return true
	}

	gen := diff.New(before.IoLog, after.IoLog, o.jitter)
	for {
		d, more := gen.Next()
		if !more {
			break
		}
		if d.Level > maxLevel {
			continue
		}
		ok = false

		if d.When.Tick != tick {
			for sideIdx < len(sideDiags) && sideDiags[sideIdx].When.Tick <= d.When.Tick {
				sd := sideDiags[sideIdx]
				if sd.When.Tick != tick {
					tick = sd.When.Tick
					printTick(tick)
				}
				if !reportDiff(sd.When, sd.PC, sd.Level, sd.Kind.(fmt.Stringer)) {
					return false
				}
				sideIdx++
			}
			if tick != d.When.Tick {
				tick = d.When.Tick
				printTick(tick)
			}
		}

		if !reportDiff(d.When, d.PC, d.Level, d.Kind.(fmt.Stringer)) {
			break
		}
	}

	if reports != o.maxReports {
		for ; sideIdx < len(sideDiags); sideIdx++ {
			sd := sideDiags[sideIdx]
			if sd.When.Tick != tick {
				tick = sd.When.Tick
				printTick(tick)
			}
			if !reportDiff(sd.When, sd.PC, sd.Level, sd.Kind.(fmt.Stringer)) {
				break
			}
		}
	}

	return ok
}
