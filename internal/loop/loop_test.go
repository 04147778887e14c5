package loop

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/discoball/internal/draw"
	"github.com/tomz197/discoball/internal/loop/config"
	"github.com/tomz197/discoball/internal/loop/server"
)

func TestRun_QuitEndsSession(t *testing.T) {
	var out bytes.Buffer
	var events []server.EventType
	r := bufio.NewReader(strings.NewReader(" q"))

	err := Run(context.Background(), r, &out, Options{
		Tuning:       config.Default(),
		Seed:         1,
		TermSizeFunc: draw.FixedTermSize(120, 40),
		Listeners:    []func(server.Event){func(ev server.Event) { events = append(events, ev.Type) }},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\033[?25l", "cursor hidden while running")
	assert.Contains(t, out.String(), "\033[?25h", "cursor restored on exit")
	assert.Empty(t, events, "no clicks reached the session")
}

func TestRun_CancelShowsShutdown(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, bufio.NewReader(pr), &out, Options{
			Tuning:       config.Default(),
			TermSizeFunc: draw.FixedTermSize(120, 40),
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Contains(t, out.String(), "SERVER SHUTTING DOWN")
}

func TestNewSession_RejectsInvalidTuning(t *testing.T) {
	tuning := config.Default()
	tuning.MaxSpeed = 0
	_, err := NewSession(Options{Tuning: tuning})
	assert.Error(t, err)
}
