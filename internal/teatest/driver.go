// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and returned commands are executed inline.
// Commands that block past a short timeout (spinner frames, refresh ticks)
// are dropped, so timer-driven loops never run in a test.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds command chains so a self-rescheduling model cannot
// loop forever.
const MaxDrainDepth = 100

// cmdTimeout separates immediate commands (store reads, message factories)
// from timer commands, which wait at least one spinner frame.
const cmdTimeout = 20 * time.Millisecond

type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.Quit has been returned.
	Quitting bool
	// Received records every message fed to Update, in order.
	Received []tea.Msg
}

type Option func(*Driver)

// New creates a Driver. Call DrainInit to run the model's Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithSize sends a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send feeds msg through Update and drains the resulting commands.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	d.drain(d.update(msg), 0)
}

// PressKey sends a single rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

func (d *Driver) View() string {
	return d.Model.View()
}

// Count returns how many received messages satisfy match.
func (d *Driver) Count(match func(tea.Msg) bool) int {
	n := 0
	for _, m := range d.Received {
		if match(m) {
			n++
		}
	}
	return n
}

func (d *Driver) update(msg tea.Msg) tea.Cmd {
	d.Received = append(d.Received, msg)
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	return cmd
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}
	msg, ok := run(cmd)
	if !ok || msg == nil {
		return
	}
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
		d.Received = append(d.Received, msg)
	default:
		d.drain(d.update(msg), depth+1)
	}
}

// run executes cmd, reporting ok=false when it does not return in time.
func run(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}
