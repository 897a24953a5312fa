package console

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"log-receiver/internal/model"
)

const Tag = "[REMOTE LOG]"

var lineEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSink{out: out}
}

// Write emits "[REMOTE LOG] <message>" as one line with a single call to the
// underlying writer.
func (cs *ConsoleSink) Write(_ context.Context, entry model.Entry) error {
	line := Format(entry.Message)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	_, err := io.WriteString(cs.out, line)
	return err
}

func Format(message string) string {
	return Tag + " " + lineEscaper.Replace(message) + "\n"
}
