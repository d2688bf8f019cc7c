package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/logging"
	"github.com/spf13/cobra"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// watcher probes the server every interval and, while it answers, runs a
// sync round.
type watcher struct {
	interval time.Duration
	ping     func(ctx context.Context) error
	round    func(ctx context.Context) error
	log      logging.Logger
	out      io.Writer

	mode Mode
}

func (w *watcher) setMode(ctx context.Context, mode Mode) {
	if w.mode != mode {
		w.mode = mode
		w.log.Info(ctx, "connectivity changed", "mode", string(mode))
		fmt.Fprintf(w.out, "Switched to %s mode\n", mode)
	}
}

func (w *watcher) tick(ctx context.Context) {
	if err := w.ping(ctx); err != nil {
		w.log.Debug(ctx, "server probe failed", "error", err)
		w.setMode(ctx, ModeOffline)
		return
	}
	w.setMode(ctx, ModeOnline)

	if err := w.round(ctx); err != nil {
		w.log.Warn(ctx, "sync round failed", "error", err)
	}
}

// run ticks once at once and then every interval until ctx is done.
func (w *watcher) run(ctx context.Context) {
	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) watchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing while the server is reachable",
		Long: `Probe the server periodically. Whenever it answers, push pending
records and merge recent server records. Stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				interval = a.cfg.WatchInterval
			}

			w := &watcher{
				interval: interval,
				ping:     a.client.Ping,
				round:    a.round,
				log:      a.log.With("component", "watch"),
				out:      a.Out,
			}
			a.log.Info(cmd.Context(), "watching", "interval", interval.String())
			w.run(cmd.Context())
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "probe interval (default: sync.watch_interval)")
	return cmd
}

// round pushes pending records and then merges recent server history.
func (a *App) round(ctx context.Context) error {
	if _, err := a.sync.Sync(ctx); err != nil {
		return err
	}
	_, err := a.merge.Pull(ctx, a.cfg.PullMonths)
	return err
}
