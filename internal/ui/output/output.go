// Package output replays captured command streams to the caller's terminal.
package output

import (
	"io"

	"github.com/charmbracelet/x/ansi"

	"go.trai.ch/runcached/internal/core/domain"
)

// Write replays the result's streams to the given writers. When strip is set,
// ANSI escape sequences are removed on the way out; stored bytes stay raw so
// the same entry can serve both a terminal and a pipe.
func Write(stdout, stderr io.Writer, res *domain.Result, strip bool) error {
	if err := writeStream(stdout, res.Stdout, strip); err != nil {
		return err
	}
	return writeStream(stderr, res.Stderr, strip)
}

func writeStream(w io.Writer, data []byte, strip bool) error {
	if len(data) == 0 {
		return nil
	}
	if strip {
		data = []byte(ansi.Strip(string(data)))
	}
	_, err := w.Write(data)
	return err
}
