package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/workairs/wa-cli/internal/chat"
)

// EventSource yields chat events until io.EOF. *chat.Stream satisfies it.
type EventSource interface {
	Recv() (chat.Event, error)
}

// RenderStream reads events from src, writes tokens to w in real time and
// returns the updated state. prefix is written before the first token.
//
// A transport error drops the in-progress message from the returned state
// and is returned. Server error events are shown inline and are not
// returned as errors.
func RenderStream(w io.Writer, src EventSource, st chat.State, prefix string) (chat.State, error) {
	dim := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	needPrefix := true
	midLine := false

	closeLine := func() {
		if midLine {
			fmt.Fprintln(w)
			midLine = false
		}
	}

	for {
		ev, err := src.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			closeLine()
			return st.Fail(), err
		}

		st = chat.Reduce(st, ev)

		switch ev.Type {
		case chat.EventToken:
			if ev.Content == "" {
				continue
			}
			if needPrefix {
				fmt.Fprint(w, prefix)
				needPrefix = false
			}
			fmt.Fprint(w, ev.Content)
			midLine = !strings.HasSuffix(ev.Content, "\n")

		case chat.EventFunctionCall:
			closeLine()
			calls := st.Last().Calls
			dim.Fprintf(w, "%s⚙ %s\n", prefix, calls[len(calls)-1].Name)
			needPrefix = true

		case chat.EventFunctionResult:
			closeLine()
			needPrefix = true
			meta := ev.Meta()
			switch {
			case meta.Success == nil:
				dim.Fprintf(w, "%s  … finished\n", prefix)
			case *meta.Success:
				green.Fprintf(w, "%s  ✓ ok\n", prefix)
			default:
				red.Fprintf(w, "%s  ✗ failed\n", prefix)
			}

		case chat.EventError:
			closeLine()
			red.Fprintf(w, "%s✗ %s\n", prefix, st.Last().Err)
		}
	}

	closeLine()
	fmt.Fprintln(w)
	return st.Settle(), nil
}
