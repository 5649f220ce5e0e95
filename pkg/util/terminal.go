package util

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

// InTerminal returns whether stdout is a terminal. Colors and spinners are only shown when
// it is.
func InTerminal() bool {
	return terminal.IsTerminal(int(os.Stdout.Fd()))
}
