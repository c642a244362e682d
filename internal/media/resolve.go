package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

// StdinArg is the positional argument that reads the track list from stdin.
const StdinArg = "-"

// ErrNoInput is returned when no source names any track.
var ErrNoInput = errors.New("no input files provided")

// Sources are the places a track list can come from.
type Sources struct {
	Args  []string
	File  string
	Stdin io.Reader
}

// UsesStdin reports whether the track list will be read from stdin.
func (s Sources) UsesStdin() bool {
	return slices.Contains(s.Args, StdinArg)
}

// Resolve builds the track list. Positional paths are checked first, then
// the first source that applies wins: stdin, the list file, then the
// positional paths themselves.
func Resolve(src Sources) ([]string, error) {
	for _, arg := range src.Args {
		if arg == StdinArg {
			continue
		}
		if err := checkFile(arg); err != nil {
			return nil, err
		}
	}

	switch {
	case src.UsesStdin():
		if src.Stdin == nil {
			return nil, errors.New("reading track list: no stdin")
		}
		lines, err := ReadLines(src.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading track list from stdin: %w", err)
		}
		return lines, nil
	case src.File != "":
		return ReadListFile(src.File)
	case len(src.Args) > 0:
		return slices.Clone(src.Args), nil
	}
	return nil, ErrNoInput
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file %q does not exist", path)
	}
	if info.IsDir() {
		return fmt.Errorf("file %q is a directory", path)
	}
	return nil
}
