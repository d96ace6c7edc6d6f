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
	PromptPath() string
	checkIdleLock(ctx context.Context) error
	touch()
	Ls(ctx context.Context) error
	Tree(ctx context.Context) error
	ChangeGroup(ctx context.Context) error
	Mkdir(ctx context.Context) error
	AddNote(ctx context.Context) error
	Show(ctx context.Context) error
	Move(ctx context.Context) error
	Remove(ctx context.Context) error
	Find(ctx context.Context) error
	Templates(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop over an opened vault.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// The prompt shows the current group path and accepts:
//
//	help           — show available commands
//	ls | l         — list groups and notes in the current group
//	tree           — print the subtree under the current group
//	cd             — change into a child group (or .. for the parent)
//	mkdir          — create a child group
//	add            — add a note
//	show           — show a single note (interactive title prompt)
//	mv             — move a group or note to another group
//	rm             — remove a group or note
//	find           — search groups and notes
//	templates      — list note templates
//	exit | quit    — leave the program
//
// Before each command the idle lock is checked; a session idle for longer
// than the configured timeout asks for the master password again. Errors
// returned by command handlers are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pv> %s > ", a.PromptPath()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if err := a.checkIdleLock(ctx); err != nil {
			printlnFn("Error:", err)
			return
		}

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: (l)s, tree, cd, mkdir, add, show, mv, rm, find, templates, exit")

		case "l", "ls":
			err = a.Ls(ctx)

		case "tree":
			err = a.Tree(ctx)

		case "cd":
			err = a.ChangeGroup(ctx)

		case "mkdir":
			err = a.Mkdir(ctx)

		case "add":
			err = a.AddNote(ctx)

		case "show":
			err = a.Show(ctx)

		case "mv":
			err = a.Move(ctx)

		case "rm":
			err = a.Remove(ctx)

		case "find":
			err = a.Find(ctx)

		case "templates":
			err = a.Templates(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
		a.touch()
	}
}
