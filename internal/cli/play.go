package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomz197/discoball/internal/loop"
	"github.com/tomz197/discoball/internal/loop/config"
	"github.com/tomz197/discoball/internal/loop/server"
	"github.com/tomz197/discoball/internal/sound"
	"github.com/tomz197/discoball/internal/tui"
)

func runPlay(cmd *cobra.Command, opts *RootOptions) error {
	tuning, err := config.Load(opts.TuningPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(opts.LogLevel, opts.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	player := sound.NewPlayer(sound.WithLogger(logger), sound.WithMuted(opts.Mute))
	// Non-fatal, the ball spins without sound.
	_ = player.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopOpts := loop.Options{
		Tuning:    tuning,
		Seed:      opts.Seed,
		Logger:    logger,
		Muted:     opts.Mute,
		OnMute:    player.SetMuted,
		Listeners: []func(server.Event){player.Handle},
	}

	if opts.Plain {
		return playPlain(ctx, loopOpts)
	}
	return playTUI(ctx, loopOpts, logger)
}

// playPlain runs the ANSI client with stdin in raw mode.
func playPlain(ctx context.Context, opts loop.Options) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	return loop.Run(ctx, bufio.NewReader(os.Stdin), os.Stdout, opts)
}

// playTUI runs the tcell renderer.
func playTUI(ctx context.Context, opts loop.Options, logger *log.Logger) error {
	session, err := loop.NewSession(opts)
	if err != nil {
		return err
	}
	defer session.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go session.Run(ctx)

	logger.Info("playing", "session", session.ID(), "renderer", "tcell")
	r := tui.New(screen, session, tui.Options{
		Muted:  opts.Muted,
		OnMute: opts.OnMute,
		Logger: logger,
	})
	return r.Run(ctx)
}
