package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if tag := a.session.ZunoTag(); tag != "" {
		return fmt.Sprintf("(@%s)", tag)
	}
	return ""
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to the Zuno CLI (type 'help' for commands)")

	if a.vault.Initialized() {
		fmt.Println("Stored credentials found. Type 'unlock' for a quick unlock, or 'login' for a full passkey login.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
