package ui

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// keyBuffer bounds how many presses can queue up ahead of the dispatcher.
const keyBuffer = 64

// Terminal is the bubbletea side of the UI. It owns the alt screen, feeds
// key presses to a dispatcher through NextKey and shows the frames handed
// to Draw.
type Terminal struct {
	program *tea.Program

	keys      chan string
	done      chan struct{}
	closeOnce sync.Once

	width  atomic.Int64
	height atomic.Int64
}

// NewTerminal creates a Terminal. Extra program options are appended after
// the alt screen option.
func NewTerminal(opts ...tea.ProgramOption) *Terminal {
	t := newTerminal()
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	t.program = tea.NewProgram(model{term: t}, opts...)
	return t
}

func newTerminal() *Terminal {
	return &Terminal{
		keys: make(chan string, keyBuffer),
		done: make(chan struct{}),
	}
}

// Run runs the bubbletea program until Quit is called or the program is
// interrupted. Key sources are closed when it returns.
func (t *Terminal) Run() error {
	defer t.Close()
	_, err := t.program.Run()
	if errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// Quit stops key delivery and asks the program to exit.
func (t *Terminal) Quit() {
	t.Close()
	t.program.Send(quitMsg{})
}

// Close stops delivering keys. Blocked and later NextKey calls return io.EOF.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() { close(t.done) })
}

// NextKey implements KeySource.
func (t *Terminal) NextKey(ctx context.Context) (string, error) {
	select {
	case k := <-t.keys:
		return k, nil
	default:
	}
	select {
	case k := <-t.keys:
		return k, nil
	case <-t.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Draw implements Screen. After Close it returns ErrScreenClosed.
func (t *Terminal) Draw(frame string) error {
	select {
	case <-t.done:
		return ErrScreenClosed
	default:
	}
	t.program.Send(frameMsg(frame))
	return nil
}

// Size returns the last known terminal size.
func (t *Terminal) Size() (int, int) {
	return int(t.width.Load()), int(t.height.Load())
}

func (t *Terminal) forward(k string) {
	select {
	case t.keys <- k:
	case <-t.done:
	}
}

// model is the bubbletea model behind Terminal. It holds no playback state.
type model struct {
	term  *Terminal
	frame string
}

func (m model) Init() tea.Cmd {
	return tea.SetWindowTitle("playa")
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.term.forward(msg.String())
		return m, nil

	case frameMsg:
		m.frame = string(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.term.width.Store(int64(msg.Width))
		m.term.height.Store(int64(msg.Height))
		return m, nil

	case quitMsg:
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}
	return m, nil
}

func (m model) View() string {
	return m.frame
}
