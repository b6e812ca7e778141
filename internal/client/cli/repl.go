package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the minimal command surface the REPL needs. *App satisfies it;
// tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Unlock(ctx context.Context) error
	Logout(ctx context.Context) error
	Wallets(ctx context.Context) error
	NewWallet(ctx context.Context) error
	SetPrimary(ctx context.Context, args []string) error
	Send(ctx context.Context) error
	Transactions(ctx context.Context, args []string) error
	Watch(ctx context.Context) error
	Profile(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, unlock, exit"
	helpLoggedIn  = "Available commands: (w)allets, newwallet, setprimary <id>, send, (t)xs <id>, watch, profile, logout, exit"
)

// runREPL reads commands line by line and dispatches them. The loop exits on
// EOF or "exit"/"quit". Handler errors are printed, never fatal: the prompt
// always comes back.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("zuno %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "unlock":
			err = a.Unlock(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "wallets", "w":
			err = a.Wallets(ctx)
		case "newwallet":
			err = a.NewWallet(ctx)
		case "setprimary":
			err = a.SetPrimary(ctx, args)
		case "send":
			err = a.Send(ctx)
		case "txs", "t":
			err = a.Transactions(ctx, args)
		case "watch":
			err = a.Watch(ctx)
		case "profile":
			err = a.Profile(ctx)
		case "exit", "quit":
			return
		default:
			printlnFn("Unknown command. Type 'help' for commands.")
		}

		if err != nil {
			printlnFn("Error: " + err.Error())
		}
	}
}
