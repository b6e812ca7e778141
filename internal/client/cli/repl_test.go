package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
	failOn   string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	if s.failOn == name {
		return errors.New("boom")
	}
	return nil
}

func (s *stubExec) isLoggedIn() bool                    { return s.loggedIn }
func (s *stubExec) Register(ctx context.Context) error  { return s.record("register") }
func (s *stubExec) Login(ctx context.Context) error     { return s.record("login") }
func (s *stubExec) Unlock(ctx context.Context) error    { return s.record("unlock") }
func (s *stubExec) Logout(ctx context.Context) error    { return s.record("logout") }
func (s *stubExec) Wallets(ctx context.Context) error   { return s.record("wallets") }
func (s *stubExec) NewWallet(ctx context.Context) error { return s.record("newwallet") }
func (s *stubExec) Send(ctx context.Context) error      { return s.record("send") }
func (s *stubExec) Watch(ctx context.Context) error     { return s.record("watch") }
func (s *stubExec) Profile(ctx context.Context) error   { return s.record("profile") }
func (s *stubExec) SetPrimary(ctx context.Context, args []string) error {
	return s.record("setprimary:" + strings.Join(args, ","))
}
func (s *stubExec) Transactions(ctx context.Context, args []string) error {
	return s.record("txs:" + strings.Join(args, ","))
}

func runWithInput(t *testing.T, s *stubExec, input string) []string {
	t.Helper()

	var output []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			output = append(output, v.(string))
		}
		return 0, nil
	}
	defer func() { printlnFn = orig }()

	scanner := bufio.NewScanner(strings.NewReader(input))
	runREPL(context.Background(), s, func() string { return "" }, scanner)
	return output
}

func TestREPL_DispatchesCommands(t *testing.T) {
	s := &stubExec{loggedIn: true}
	runWithInput(t, s, "wallets\nsetprimary w_2\ntxs w_1\nsend\nexit\n")

	assert.Equal(t, []string{"wallets", "setprimary:w_2", "txs:w_1", "send"}, s.calls)
}

func TestREPL_Aliases(t *testing.T) {
	s := &stubExec{loggedIn: true}
	runWithInput(t, s, "w\nt w_1\nquit\n")

	assert.Equal(t, []string{"wallets", "txs:w_1"}, s.calls)
}

func TestREPL_HelpDependsOnLoginState(t *testing.T) {
	out := runWithInput(t, &stubExec{}, "help\nexit\n")
	assert.Contains(t, out, helpLoggedOut)

	out = runWithInput(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, out, helpLoggedIn)
}

func TestREPL_UnknownCommandAndErrors(t *testing.T) {
	s := &stubExec{loggedIn: true, failOn: "send"}
	out := runWithInput(t, s, "frobnicate\nsend\nwallets\nexit\n")

	assert.Contains(t, out, "Unknown command. Type 'help' for commands.")
	assert.Contains(t, out, "Error: boom")
	// The loop survives a handler error.
	assert.Equal(t, []string{"send", "wallets"}, s.calls)
}

func TestREPL_EmptyLinesAndEOF(t *testing.T) {
	s := &stubExec{}
	runWithInput(t, s, "\n\n   \n")
	assert.Empty(t, s.calls)
}
