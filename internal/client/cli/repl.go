package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
	Sync(ctx context.Context) error
	Push(ctx context.Context) error
	Check(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login [username], status, reconnect, help, exit"
	helpLoggedIn  = "Available commands: whoami, status, sync, push, check, reconnect, logout, help, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
//
// The prompt shows statusFn's output. The loop exits on EOF, on ctx
// cancellation between commands, or when the user types "exit" or "quit".
// Command errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pos %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			cmdErr = a.Login(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "status", "st":
			cmdErr = a.Status(ctx)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "push":
			cmdErr = a.Push(ctx)

		case "check":
			cmdErr = a.Check(ctx)

		case "reconnect":
			cmdErr = a.Reconnect(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
