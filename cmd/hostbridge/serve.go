package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/envelope"
	"github.com/wippyai/hostbridge/value"
)

const maxLine = 4 << 20

// lineWriter serializes replies and events onto one stream.
type lineWriter struct {
	w  io.Writer
	mu sync.Mutex
}

func (lw *lineWriter) write(line []byte) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, _ = lw.w.Write(append(line, '\n'))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// serve reads one JSON request per line from in and writes one reply per
// line to out. Events are written to out as they fire.
func serve(ctx context.Context, eng *bridge.Engine, in io.Reader, out io.Writer, prompt bool) error {
	lw := &lineWriter{w: out}
	d := envelope.New(eng, func(token string, v value.Value) {
		data, err := value.Marshal(envelope.EventEnvelope(token, v))
		if err != nil {
			return
		}
		lw.write(data)
	})

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for {
		if prompt {
			fmt.Fprint(os.Stderr, "> ")
		}
		if !sc.Scan() {
			break
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		lw.write(d.HandleJSON(ctx, line))
		if ctx.Err() != nil {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	return nil
}
