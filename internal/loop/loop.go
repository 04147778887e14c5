// Package loop runs a disco ball on the local terminal.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/tomz197/discoball/internal/draw"
	"github.com/tomz197/discoball/internal/loop/client"
	"github.com/tomz197/discoball/internal/loop/config"
	"github.com/tomz197/discoball/internal/loop/server"
)

// Options configures a local run.
type Options struct {
	Tuning    config.Tuning
	Seed      int64 // 0 picks a time-based seed
	Logger    *log.Logger
	Muted     bool
	OnMute    func(muted bool)
	Listeners []func(server.Event)

	TermSizeFunc draw.TermSizeFunc // Defaults to the size of stdout
}

// NewSession creates the session a local run plays against.
func NewSession(opts Options) (*server.Session, error) {
	sessOpts := []server.Option{
		server.WithSeed(opts.Seed),
		server.WithLogger(opts.Logger),
	}
	for _, fn := range opts.Listeners {
		sessOpts = append(sessOpts, server.WithListener(fn))
	}
	return server.NewSession(opts.Tuning, sessOpts...)
}

// Run plays one session on the ANSI client until the user quits or ctx is
// cancelled. r must already be in raw mode.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	session, err := NewSession(opts)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go session.Run(ctx)

	c := client.NewClient(session, r, w, client.ClientOptions{
		TermSizeFunc: opts.TermSizeFunc,
		ShuttingDown: ctx.Done(),
		OnMute:       opts.OnMute,
		Muted:        opts.Muted,
		Logger:       opts.Logger,
	})
	if err := c.Run(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return nil
}
