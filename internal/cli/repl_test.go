package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	calls      []string
	lockChecks int
}

func (s *stubExec) record(name string) error { s.calls = append(s.calls, name); return nil }

func (s *stubExec) PromptPath() string                         { return "/" }
func (s *stubExec) checkIdleLock(ctx context.Context) error    { s.lockChecks++; return nil }
func (s *stubExec) touch()                                     {}
func (s *stubExec) Ls(ctx context.Context) error               { return s.record("ls") }
func (s *stubExec) Tree(ctx context.Context) error             { return s.record("tree") }
func (s *stubExec) ChangeGroup(ctx context.Context) error      { return s.record("cd") }
func (s *stubExec) Mkdir(ctx context.Context) error            { return s.record("mkdir") }
func (s *stubExec) AddNote(ctx context.Context) error          { return s.record("add") }
func (s *stubExec) Show(ctx context.Context) error             { return s.record("show") }
func (s *stubExec) Move(ctx context.Context) error             { return s.record("mv") }
func (s *stubExec) Remove(ctx context.Context) error           { return s.record("rm") }
func (s *stubExec) Find(ctx context.Context) error             { return s.record("find") }
func (s *stubExec) Templates(ctx context.Context) error        { return s.record("templates") }

func runWithInput(t *testing.T, input string) (*stubExec, []string) {
	t.Helper()

	var printed []string
	orig := printlnFn
	t.Cleanup(func() { printlnFn = orig })
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}

	s := &stubExec{}
	runREPL(context.Background(), s, bufio.NewScanner(strings.NewReader(input)))
	return s, printed
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	s, _ := runWithInput(t, "ls\ntree\ncd\nmkdir\nadd\nshow\nmv\nrm\nfind\ntemplates\nexit\n")

	assert.Equal(t,
		[]string{"ls", "tree", "cd", "mkdir", "add", "show", "mv", "rm", "find", "templates"},
		s.calls)
}

func TestRunREPL_ShortAlias(t *testing.T) {
	s, _ := runWithInput(t, "l\nquit\n")
	assert.Equal(t, []string{"ls"}, s.calls)
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	s, printed := runWithInput(t, "frobnicate\nexit\n")

	assert.Empty(t, s.calls)
	joined := strings.Join(printed, "\n")
	assert.Contains(t, joined, "Unknown command:")
}

func TestRunREPL_EmptyLinesSkipLockCheck(t *testing.T) {
	s, _ := runWithInput(t, "\n\nls\nexit\n")

	assert.Equal(t, []string{"ls"}, s.calls)
	// One check for "ls", one for "exit".
	assert.Equal(t, 2, s.lockChecks)
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	s, _ := runWithInput(t, "ls\n")
	assert.Equal(t, []string{"ls"}, s.calls)
}
