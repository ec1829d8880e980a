package ui

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/jyane/j6309/board"
)

// Start is the main entrypoint. It runs console attached to t until the
// machine halts, ctx is done or either side fails, and restores the terminal.
// t must be the console's serial endpoint.
func Start(ctx context.Context, console *board.Console, t *Terminal) error {
	if err := t.Setup(); err != nil {
		return err
	}
	defer t.Restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The pump stops once the machine does.
		defer cancel()
		err := console.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return t.Pump(ctx)
	})
	return g.Wait()
}
