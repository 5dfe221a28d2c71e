// Command gbsdiff compares the audio register writes two builds of the
// same GBS driver produce, song by song, and reports where they diverge.
package main

import (
	"fmt"
	"os"

	"github.com/thelolagemann/gbsdiff/pkg/log"
)

func main() {
	err := newRootCmd(log.New()).Execute()
	switch {
	case err == nil:
		return
	case err == errFailed:
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
