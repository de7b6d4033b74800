package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/chat"
	"github.com/workairs/wa-cli/internal/history"
	"github.com/workairs/wa-cli/internal/stats"
	"github.com/workairs/wa-cli/internal/ui"
)

var (
	chatConversation string
	chatResume       bool
	chatFiles        []string
	chatNoStream     bool
)

const replyPrefix = "  "

// chatOut receives the rendered reply.
var chatOut io.Writer = os.Stdout

// interruptContext derives the context for one turn; Ctrl-C cancels it.
var interruptContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the Workairs agent",
	Long: `Chat with the Workairs sales agent. The reply streams in as it is
generated, including the tools the agent calls along the way.

With a message, sends it and exits. Without one, starts an interactive
session; type 'exit' or 'quit' to end it. Ctrl-C stops the current reply
without leaving the session.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatConversation, "conversation", "c", "", "Continue the conversation with this id")
	chatCmd.Flags().BoolVar(&chatResume, "resume", false, "Continue the most recent conversation")
	chatCmd.Flags().StringArrayVarP(&chatFiles, "file", "f", nil, "Attach a file to the first message (repeatable)")
	chatCmd.Flags().BoolVar(&chatNoStream, "no-stream", false, "Wait for the full reply instead of streaming it")
	chatCmd.MarkFlagsMutuallyExclusive("conversation", "resume")
}

func runChat(cmd *cobra.Command, args []string) error {
	client, err := requireLogin()
	if err != nil {
		return err
	}
	if chatNoStream && len(chatFiles) > 0 {
		return errors.New("--file cannot be used with --no-stream")
	}

	st := chat.State{ConversationID: chatConversation}
	if chatResume {
		last, ok := history.Latest()
		if !ok || last.ConversationID == "" {
			return errors.New("no previous conversation to resume")
		}
		st.ConversationID = last.ConversationID
	}

	files, closeFiles, err := openFiles(chatFiles)
	if err != nil {
		return err
	}
	defer closeFiles()

	if len(args) > 0 {
		return chatOnce(cmd.Context(), client, st, strings.Join(args, " "), files)
	}
	return chatREPL(cmd.Context(), client, st, files)
}

// chatOnce runs a single turn. A reply the server ended with an error event
// fails the command so scripts can tell it apart from a good one.
func chatOnce(ctx context.Context, client *api.Client, st chat.State, text string, files []api.File) error {
	st, err := chatTurn(ctx, client, st, text, files)
	if err != nil {
		return err
	}
	if last := st.Last(); last.Role == chat.RoleAssistant && last.Failed() {
		return fmt.Errorf("agent reply failed: %s", last.Err)
	}
	return nil
}

func chatREPL(ctx context.Context, client *api.Client, st chat.State, files []api.File) error {
	cyan := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	fmt.Fprintln(os.Stderr)
	cyan.Fprintln(os.Stderr, "  wa chat")
	if st.ConversationID != "" {
		dim.Fprintf(os.Stderr, "  Continuing conversation %s.\n", st.ConversationID)
	} else {
		dim.Fprintln(os.Stderr, "  Ask about your leads, campaigns and inbox.")
	}
	dim.Fprintf(os.Stderr, "  Type 'exit' to quit. Ctrl-C stops a reply.\n\n")

	for {
		green.Fprint(os.Stderr, "  you → ")
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr)
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" || input == "bye" {
			dim.Fprintf(os.Stderr, "\n  Bye.\n\n")
			return nil
		}

		next, err := chatTurn(ctx, client, st, input, files)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) || ctx.Err() != nil {
				return err
			}
			color.New(color.FgRed).Fprintf(os.Stderr, "  Error: %v\n\n", err)
		}
		st = next
		// Attachments go with the first message only.
		files = nil
	}
}

// turnMetrics collects timings for one turn.
type turnMetrics struct {
	start      time.Time
	firstEvent time.Duration
	dropped    int
}

// chatTurn sends one message and renders the reply. Ctrl-C during the turn
// cancels the reply and keeps what has been shown so far. Cancellation of
// ctx itself is returned as an error.
func chatTurn(ctx context.Context, client *api.Client, st chat.State, text string, files []api.File) (chat.State, error) {
	turnCtx, stop := interruptContext(ctx)
	defer stop()

	m := &turnMetrics{start: time.Now()}
	var err error
	if chatNoStream {
		st, err = sendBlocking(turnCtx, client, st, text)
	} else {
		st, err = sendStreaming(turnCtx, client, st, text, files, m)
	}

	canceled := turnCtx.Err() != nil && ctx.Err() == nil
	switch {
	case canceled:
		color.New(color.FgHiBlack).Fprintln(os.Stderr, "  (stopped)")
		fmt.Fprintln(os.Stderr)
		err = nil
	case err == nil && ctx.Err() != nil:
		err = ctx.Err()
	}

	recordTurn(st, text, err)
	recordStats(st, m, canceled, err)
	return st, err
}

func sendStreaming(ctx context.Context, client *api.Client, st chat.State, text string, files []api.File, m *turnMetrics) (chat.State, error) {
	sp := ui.NewSpinner("Thinking...")
	sp.Start()

	stream, err := chat.StreamChat(ctx, client, chat.Request{
		Message:        text,
		ConversationID: st.ConversationID,
		Files:          files,
	})
	if err != nil {
		sp.Stop()
		if ctx.Err() != nil {
			return st, nil
		}
		return st, err
	}
	defer stream.Close()

	src := &firstEvent{src: stream, fn: func() {
		sp.Stop()
		m.firstEvent = time.Since(m.start)
	}}
	st, err = ui.RenderStream(chatOut, src, st.Send(text), replyPrefix)
	sp.Stop()

	if m.dropped = stream.Dropped(); m.dropped > 0 {
		logrus.WithField("component", "chat").Debugf("dropped %d malformed records", m.dropped)
	}
	return st, err
}

// sendBlocking uses the non-streaming endpoint and folds the reply through
// the same reducer as a stream would.
func sendBlocking(ctx context.Context, client *api.Client, st chat.State, text string) (chat.State, error) {
	sp := ui.NewSpinner("Thinking...")
	sp.Start()
	reply, err := client.Conversations.Send(ctx, text, st.ConversationID)
	sp.Stop()
	if err != nil {
		if ctx.Err() != nil {
			return st, nil
		}
		return st, err
	}

	st = st.Send(text)
	for _, ev := range []chat.Event{
		{Type: chat.EventStart, Metadata: &chat.Metadata{ConversationID: reply.ConversationID}},
		{Type: chat.EventToken, Content: reply.Message},
		{Type: chat.EventDone, Metadata: &chat.Metadata{
			ConversationID: reply.ConversationID,
			Model:          reply.Model,
			ResponseTimeMS: reply.ResponseTimeMS,
			TokensUsed:     reply.TokensUsed,
		}},
	} {
		st = chat.Reduce(st, ev)
	}

	fmt.Fprintln(chatOut, ui.Markdown(reply.Message))
	return st, nil
}

func recordTurn(st chat.State, text string, turnErr error) {
	if st.ConversationID == "" {
		return
	}
	last := st.Last()
	entry := history.Entry{
		ConversationID: st.ConversationID,
		Title:          ui.Truncate(text, 60),
		Turns:          1,
		Failed:         turnErr != nil || last.Failed(),
	}
	if last.Role == chat.RoleAssistant {
		entry.LastReply = ui.Truncate(last.Content, 200)
	}
	if err := history.Save(entry); err != nil {
		logrus.WithError(err).Warn("failed to save chat history")
	}
}

func recordStats(st chat.State, m *turnMetrics, canceled bool, turnErr error) {
	rec := stats.Record{
		Streamed:   !chatNoStream,
		FirstEvent: m.firstEvent,
		Total:      time.Since(m.start),
		Dropped:    m.dropped,
		Outcome:    stats.OutcomeOK,
	}

	last := st.Last()
	if turnErr == nil && last.Role == chat.RoleAssistant {
		rec.Model = last.Model
		rec.TokensUsed = last.TokensUsed
		rec.ServerTimeMS = last.ResponseTimeMS
		for _, c := range last.Calls {
			if !c.Orphan {
				rec.Tools = append(rec.Tools, c.Name)
			}
		}
	}

	switch {
	case canceled:
		rec.Outcome = stats.OutcomeCanceled
	case turnErr != nil:
		rec.Outcome = stats.OutcomeError
	case last.Failed():
		rec.Outcome = stats.OutcomeFailed
	}

	if err := stats.Save(rec); err != nil {
		logrus.WithError(err).Debug("failed to save stats")
	}
}

func openFiles(paths []string) ([]api.File, func(), error) {
	var files []api.File
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("failed to open attachment: %w", err)
		}
		closers = append(closers, f)
		files = append(files, api.File{Name: filepath.Base(p), Content: f})
	}
	return files, closeAll, nil
}

// firstEvent runs fn once the first event or error arrives, so the
// spinner clears before any output is written.
type firstEvent struct {
	src  ui.EventSource
	fn   func()
	once sync.Once
}

func (f *firstEvent) Recv() (chat.Event, error) {
	ev, err := f.src.Recv()
	f.once.Do(f.fn)
	return ev, err
}
