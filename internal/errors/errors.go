// Package errors renders command failures for the terminal.
package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/rizq/internal/content"
	"github.com/julianstephens/rizq/internal/keyring"
	"github.com/julianstephens/rizq/internal/logger"
	"github.com/julianstephens/rizq/internal/storage"
	"github.com/julianstephens/rizq/internal/storage/postgres"
)

const (
	ExitFailure = 1
	// ExitConfig signals a problem the user has to fix in their setup.
	ExitConfig = 2
)

type hint struct {
	target error
	text   string
	code   int
}

var hints = []hint{
	{postgres.ErrEmbeddedCredentials, "store the connection string with 'rizq keyring set' or RIZQ_DB_CONNECTION, and keep the password in ~/.pgpass", ExitConfig},
	{postgres.ErrInvalidConnectionString, "expected postgres://user@host/db or a key=value DSN", ExitConfig},
	{storage.ErrNotInitialized, "run 'rizq init' first", ExitConfig},
	{keyring.ErrKeyringUnavailable, "no OS keyring found; pass --config or set RIZQ_DB_CONNECTION instead", ExitConfig},
	{content.ErrNotFound, "run 'rizq content list' to see available journeys and duas", ExitFailure},
}

// Hint returns guidance for well-known failures, or "" when there is none.
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.text
		}
	}
	return ""
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.code
		}
	}
	return ExitFailure
}

// Format renders err with an "Error: " prefix and a hint line when one applies.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if h := Hint(err); h != "" {
		msg += "\nHint: " + h
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs err, prints it to stderr and exits with ExitCode(err).
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, Format(err))
		os.Exit(ExitCode(err))
	}
}

func Fatalf(format string, args ...any) {
	Fatal(fmt.Errorf(format, args...))
}
