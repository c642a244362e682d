package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/playa/internal/config"
	"github.com/olivier-w/playa/internal/logging"
	"github.com/olivier-w/playa/internal/media"
	"github.com/olivier-w/playa/internal/player"
	"github.com/olivier-w/playa/internal/session"
	"github.com/olivier-w/playa/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var errNotTerminal = errors.New("stdout is not a terminal")

func main() {
	a := &app{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		isTerminal: term.IsTerminal,
	}
	if err := newRootCmd(a).Execute(); err != nil {
		if errors.Is(err, media.ErrNoInput) {
			fmt.Fprintln(os.Stderr, "No input files provided")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app holds the process handles the command runs against.
type app struct {
	stdin      io.Reader
	stdout     *os.File
	isTerminal func(fd int) bool
}

type flags struct {
	file    string
	config  string
	verbose bool
}

func newRootCmd(a *app) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "playa [flags] [files...]",
		Short: "Play local audio files in the terminal",
		Long: `Playa plays a list of local audio files with a full-screen terminal UI.

Tracks come from the positional paths, from a list file given with -f
(one path per line, or an .m3u/.m3u8/.pls playlist), or from stdin when
"-" is passed. Supported formats: ` + media.SupportedExtsList() + `.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := media.Sources{Args: args, File: f.file, Stdin: a.stdin}
			return a.run(cmd.Context(), f, src)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "read the track list from a file")
	fl.StringVarP(&f.config, "config", "c", "", "config file (default: ~/.config/playa/config.toml)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "write debug logs")
	return cmd
}

func (a *app) run(ctx context.Context, f flags, src media.Sources) error {
	paths, err := media.Resolve(src)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return session.ErrEmptyPlaylist
	}

	cfg, err := config.LoadFrom(f.config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closer, err := logging.Setup(cfg.Log.Level, cfg.Log.File, f.verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	tracks := buildTracks(paths, logger)

	if !a.isTerminal(int(a.stdout.Fd())) {
		return errNotTerminal
	}

	engine, err := player.NewEngine(player.Options{Volume: cfg.Volume, Logger: logger})
	if err != nil {
		return err
	}
	defer engine.Close()

	sess, err := session.New(tracks, engine, session.Options{
		ClampSeek: cfg.ClampSeek,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer sess.Shutdown()

	var opts []tea.ProgramOption
	if src.UsesStdin() {
		// stdin carried the track list, so keys come from the tty.
		opts = append(opts, tea.WithInputTTY())
	}
	t := ui.NewTerminal(opts...)
	dispatcher := ui.NewDispatcher(sess, ui.DispatcherOptions{Logger: logger})
	renderer := ui.NewRenderer(sess, t, ui.RendererOptions{
		Interval:  cfg.RefreshInterval(),
		HelpLines: dispatcher.HelpLines(),
		Logger:    logger,
	})

	logger.Info().Int("tracks", len(tracks)).Msg("starting playback")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(t.Run)
	g.Go(func() error {
		defer t.Quit()
		return dispatcher.Run(gctx, t)
	})
	g.Go(func() error {
		return renderer.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("playback ended with error")
		return err
	}
	logger.Info().Msg("playback ended")
	return nil
}

// buildTracks reads tags for every path. Files without a decoder are kept
// so the list matches what was asked for. They fail to load when reached.
func buildTracks(paths []string, logger zerolog.Logger) []session.Track {
	tracks := make([]session.Track, len(paths))
	for i, p := range paths {
		if !media.IsSupportedExt(filepath.Ext(p)) {
			logger.Warn().Str("track", p).Int("index", i).Msg("no decoder for file type")
		}
		meta := player.ReadMetadata(p)
		tracks[i] = session.Track{
			Path:   p,
			Title:  meta.Title,
			Artist: meta.Artist,
			Album:  meta.Album,
		}
	}
	return tracks
}
