package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jpalacios/herbascan/internal/client/services"
)

func (a *App) prompt() string {
	if user := a.gate.CurrentUser(); user != nil && user.Email != "" {
		return fmt.Sprintf("herbascan (%s)> ", user.Email)
	}
	if a.gate.State() == services.StateAuthenticated {
		return "herbascan (signed in)> "
	}
	return "herbascan> "
}

func (a *App) printHelp() {
	if a.gate.State() == services.StateAuthenticated {
		fmt.Fprintln(a.out, "Available commands: stats, scan, detail, reset, status, logout, exit")
	} else {
		fmt.Fprintln(a.out, "Available commands: login, register, stats, exit")
	}
}

// Root runs the command loop. The session gate resolves before the first
// prompt is printed; nothing renders until then.
func (a *App) Root(ctx context.Context) {
	state, err := a.gate.Bootstrap(ctx)
	if err != nil {
		a.log.Warn(ctx, "bootstrap degraded, starting unauthenticated", "err", err)
	}

	a.gate.Subscribe(func(s services.AuthState) {
		if s == services.StateAuthenticated {
			fmt.Fprintln(a.out, "Signed in.")
		} else {
			fmt.Fprintln(a.out, "Signed out.")
		}
	})

	if state == services.StateAuthenticated {
		if user := a.gate.CurrentUser(); user != nil {
			fmt.Fprintf(a.out, "Welcome back, %s.\n", user.Name)
		} else {
			fmt.Fprintln(a.out, "Welcome back.")
		}
	} else {
		fmt.Fprintln(a.out, "Welcome to herbascan (type 'help' for commands)")
	}

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprint(a.out, a.prompt())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			a.printHelp()
		case "login":
			a.Login(ctx)
		case "register":
			a.Register(ctx)
		case "logout":
			a.Logout(ctx)
		case "status", "whoami":
			a.Status(ctx)
		case "stats":
			a.Stats(ctx)
		case "scan":
			a.Scan(ctx)
		case "detail":
			a.Detail(ctx)
		case "reset":
			a.ResetScan()
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", parts[0])
		}
	}
}
