package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Passwd(ctx context.Context) error
	Activity(ctx context.Context) error
	Appointments(ctx context.Context) error
	SOS(ctx context.Context, preselect string) error
	Quick(ctx context.Context) error
	History(ctx context.Context) error
	ActiveEmergencies(ctx context.Context) error
	Complete(ctx context.Context, id string) error
	CancelEmergency(ctx context.Context) error
}

// runREPL reads commands from scanner and dispatches them to a until EOF or
// "exit"/"quit".
//
//	Always available:
//	  - help             show available commands
//	  - sos [type]       request emergency help
//	  - quick            quick SOS for critical situations
//	  - cancel           cancel the current emergency request
//	  - exit | quit      leave the program
//
//	Not logged in:
//	  - register, login
//
//	Logged in:
//	  - whoami, profile, passwd, activity, appointments, history, logout
//	  - active, complete <id>   (practitioners and pharmacists)
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("nsg %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, profile, passwd, activity, appointments, sos [type], quick, cancel, history, active, complete <id>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, sos [type], quick, cancel, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "passwd":
			_ = a.Passwd(ctx)

		case "activity":
			_ = a.Activity(ctx)

		case "appointments":
			_ = a.Appointments(ctx)

		case "sos":
			preselect := ""
			if len(args) > 0 {
				preselect = args[0]
			}
			_ = a.SOS(ctx, preselect)

		case "quick":
			_ = a.Quick(ctx)

		case "cancel":
			_ = a.CancelEmergency(ctx)

		case "history":
			_ = a.History(ctx)

		case "active":
			_ = a.ActiveEmergencies(ctx)

		case "complete":
			if len(args) == 0 {
				printlnFn("Usage: complete <id>")
				continue
			}
			_ = a.Complete(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
