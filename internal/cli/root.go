package cli

import (
	"bufio"
	"context"
	"fmt"

	"github.com/dmitrijs2005/nsghealth/internal/auth"
)

func (a *App) getStatus() string {
	u := a.authService.CurrentUser()
	if u == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", u.Email, u.Role)
}

// Root runs the REPL on stdin until the user exits or ctx is done. The
// dashboard syncer and location tracking run alongside it.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to NSG Health CLI (type 'help' for commands)")
	if u := a.authService.CurrentUser(); u != nil {
		printlnFn("Signed in as", auth.DisplayName(*u))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer a.subscribe()()
	go a.syncer.Run(ctx)

	if err := a.emergencies.StartLocationTracking(ctx); err != nil {
		a.logger.Info(ctx, "location tracking disabled", "error", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.getStatus, bufio.NewScanner(lineReader{a.reader}))
	}()

	// A pending stdin read cannot be interrupted, so a signal ends Root
	// without waiting for the REPL.
	select {
	case <-done:
	case <-ctx.Done():
		printlnFn("\nBye!")
	}
}

// lineReader hands out at most one line per Read so the REPL scanner never
// consumes input meant for the prompts that share the same reader.
type lineReader struct {
	r *bufio.Reader
}

func (l lineReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := l.r.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		p[n] = b
		n++
		if b == '\n' {
			break
		}
	}
	return n, nil
}
