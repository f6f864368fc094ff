package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if a.userEmail != "" {
		s = a.userEmail + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores a cached session if there is one, starts the health
// watcher and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to the accounts CLI (type 'help' for commands)")

	if email, err := a.authService.Restore(ctx); err == nil {
		a.userEmail = email
		log.Printf("Restored session for %s", email)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
