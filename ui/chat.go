// Package ui is the line-oriented terminal front end. Each line the user
// enters runs one turn; the transcript is printed above the prompt so it stays
// in the terminal's scrollback.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"compsbot/agent"
)

const quitCommand = "/quit"

// Streamer starts a turn.
type Streamer interface {
	Stream(ctx context.Context, threadID, text string) *agent.TurnStream
}

type turnUpdateMsg struct {
	update agent.Update
	stream *agent.TurnStream
}

type turnDoneMsg struct {
	answer string
	err    error
}

type copiedMsg struct {
	err error
}

// Chat is the bubbletea model for the chat prompt.
type Chat struct {
	ctx      context.Context
	streamer Streamer
	threadID string
	pdfPath  string

	input   textinput.Model
	spinner spinner.Model

	width      int
	busy       bool
	status     string
	cancel     context.CancelFunc
	lastAnswer string
}

// NewChat creates the chat model. pdfPath is mentioned after answers that
// produced a report.
func NewChat(ctx context.Context, streamer Streamer, threadID, pdfPath string) Chat {
	ti := textinput.New()
	ti.Placeholder = "Enter a property address, or /quit"
	ti.Prompt = UserStyle.Render("You: ")
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Chat{
		ctx:      ctx,
		streamer: streamer,
		threadID: threadID,
		pdfPath:  pdfPath,
		input:    ti,
		spinner:  sp,
		width:    80,
	}
}

func (c Chat) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.Println(DimStyle.Render("Real-estate comps assistant. Ask about a property address.")),
	)
}

func (c Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.input.Width = max(msg.Width-10, 10)
		return c, nil

	case tea.KeyMsg:
		return c.handleKey(msg)

	case turnUpdateMsg:
		return c.handleUpdate(msg)

	case turnDoneMsg:
		return c.handleDone(msg)

	case copiedMsg:
		if msg.err != nil {
			return c, tea.Println(ErrorStyle.Render("Copy failed: " + msg.err.Error()))
		}
		return c, tea.Println(DimStyle.Render("Copied last answer to clipboard."))

	case spinner.TickMsg:
		if !c.busy {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c Chat) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if c.cancel != nil {
			c.cancel()
		}
		return c, tea.Quit

	case tea.KeyEsc:
		if c.busy && c.cancel != nil {
			c.cancel()
			c.status = "Cancelling..."
		}
		return c, nil

	case tea.KeyCtrlY:
		if c.lastAnswer == "" {
			return c, nil
		}
		answer := c.lastAnswer
		return c, func() tea.Msg {
			return copiedMsg{err: clipboard.WriteAll(answer)}
		}

	case tea.KeyEnter:
		if c.busy {
			return c, nil
		}
		text := strings.TrimSpace(c.input.Value())
		c.input.Reset()
		if text == "" {
			return c, nil
		}
		if text == quitCommand {
			return c, tea.Quit
		}
		return c.startTurn(text)
	}

	if c.busy {
		return c, nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c Chat) startTurn(text string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.busy = true
	c.status = "Thinking..."

	log.Debug().Str("thread", c.threadID).Int("chars", len(text)).Msg("turn started")

	stream := c.streamer.Stream(ctx, c.threadID, text)
	return c, tea.Batch(
		tea.Println(UserStyle.Render("You: ")+text),
		waitForUpdate(stream),
		c.spinner.Tick,
	)
}

// waitForUpdate reads the next update, or the result once the stream closes.
func waitForUpdate(stream *agent.TurnStream) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-stream.Updates()
		if !ok {
			answer, err := stream.Result()
			return turnDoneMsg{answer: answer, err: err}
		}
		return turnUpdateMsg{update: u, stream: stream}
	}
}

func (c Chat) handleUpdate(msg turnUpdateMsg) (tea.Model, tea.Cmd) {
	var line tea.Cmd
	u := msg.update

	switch u.Kind {
	case agent.UpdateState:
		if u.State == agent.StateAwaitingModel {
			c.status = "Thinking..."
		} else {
			c.status = "Running tools..."
		}
	case agent.UpdateToken:
		c.status = "Writing: " + u.Text
	case agent.UpdateToolCall:
		c.status = "Calling " + u.Tool + "..."
		line = tea.Println(DimStyle.Render("→ " + u.Tool))
	case agent.UpdateProgress:
		c.status = u.Text
		line = tea.Println(ProgressStyle.Render("  " + strings.TrimSpace(u.Text)))
	case agent.UpdateToolResult:
		c.status = u.Tool + " finished"
	}

	var next tea.Cmd
	if msg.stream != nil {
		next = waitForUpdate(msg.stream)
	}
	return c, tea.Batch(line, next)
}

func (c Chat) handleDone(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	c.busy = false
	c.status = ""
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if msg.err != nil {
		text := "Error: " + msg.err.Error()
		if errors.Is(msg.err, context.Canceled) {
			text = "Turn cancelled."
		}
		return c, tea.Println(ErrorStyle.Render(text))
	}

	c.lastAnswer = msg.answer
	out := AssistantStyle.Render("Assistant:") + "\n" + renderAnswer(msg.answer, c.width)
	if looksLikeHTML(msg.answer) && c.pdfPath != "" {
		out += "\n" + DimStyle.Render(fmt.Sprintf("Report saved to %s", c.pdfPath))
	}
	return c, tea.Println(out)
}

func (c Chat) View() string {
	if c.busy {
		return c.spinner.View() + " " + StatusStyle.Render(truncate(c.status, c.width-4)) + "\n"
	}
	return c.input.View() + "\n" +
		StatusStyle.Render(FormatFooter("Enter", "Send", "Ctrl+Y", "Copy answer", "Esc", "Cancel", "/quit", "Exit"))
}

// Run starts the chat program and blocks until the user quits.
func Run(ctx context.Context, streamer Streamer, threadID, pdfPath string) error {
	p := tea.NewProgram(NewChat(ctx, streamer, threadID, pdfPath), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}
