package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// seekStepSeconds is how far h and l move.
const seekStepSeconds = 10

// scrubKeys are the progress bar keys, left to right.
const scrubKeys = "qwertyuiop"

// keyPress adapts a raw key name to key.Matches.
type keyPress string

func (k keyPress) String() string { return string(k) }

// keyMap holds every binding the dispatcher understands, in help order.
type keyMap struct {
	Next        key.Binding
	Prev        key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	Jump        key.Binding
	Scrub       key.Binding
	Pause       key.Binding
	Mode        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "Next song"),
		),
		Prev: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "Previous song"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "Seek backward 10s"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Seek forward 10s"),
		),
		Jump: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-0", "Jump to song (1-10)"),
		),
		Scrub: key.NewBinding(
			key.WithKeys(strings.Split(scrubKeys, "")...),
			key.WithHelp("q-p", "Progress bar seek"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Play/Pause"),
		),
		Mode: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "Toggle UI mode"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help screen"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "Exit"),
		),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{
		k.Next, k.Prev, k.SeekBack, k.SeekForward, k.Jump,
		k.Scrub, k.Pause, k.Mode, k.Help, k.Quit,
	}
}

// HelpLines returns the help overlay text, one "key: description" per line.
func (k keyMap) HelpLines() []string {
	bs := k.bindings()
	lines := make([]string, 0, len(bs))
	for _, b := range bs {
		h := b.Help()
		lines = append(lines, h.Key+": "+h.Desc)
	}
	return lines
}

// jumpNumber maps a digit key to a one-based track number; 0 means 10.
func jumpNumber(k string) int {
	if len(k) != 1 || k[0] < '0' || k[0] > '9' {
		return 0
	}
	if k[0] == '0' {
		return 10
	}
	return int(k[0] - '0')
}

// scrubRank returns the position of k in the scrub row, or -1.
func scrubRank(k string) int {
	if len(k) != 1 {
		return -1
	}
	return strings.Index(scrubKeys, k)
}

// ScrubFraction converts a scrub key rank (0-9) into a fraction of the
// track: rank 0 is the start, rank 9 the end.
func ScrubFraction(rank int) float64 {
	return float64(rank) / float64(len(scrubKeys)-1)
}
