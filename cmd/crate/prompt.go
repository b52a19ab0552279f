package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sydlexius/crate/internal/catalog"
)

// promptPassword reads a password from the terminal without echo. It returns
// "" when ask is false.
func promptPassword(cmd *cobra.Command, ask bool) (string, error) {
	if !ask {
		return "", nil
	}
	fd := int(os.Stdin.Fd()) //nolint:gosec // stdin fd fits in int
	if !term.IsTerminal(fd) {
		return "", catalog.Configurationf("--ask-password needs an interactive terminal")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "SSH password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
