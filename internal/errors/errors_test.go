package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/julianstephens/rizq/internal/content"
	"github.com/julianstephens/rizq/internal/storage"
	"github.com/julianstephens/rizq/internal/storage/postgres"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "wrapped sentinel gets a hint",
			err:      fmt.Errorf("failed to load habits: %w", storage.ErrNotInitialized),
			expected: "Error: failed to load habits: storage not initialized\nHint: run 'rizq init' first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	if got := Formatf("dua %d not found", 7); got != "Error: dua 7 not found" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"generic", errors.New("boom"), ExitFailure},
		{"embedded password", postgres.ErrEmbeddedCredentials, ExitConfig},
		{"missing content", fmt.Errorf("dua 9: %w", content.ErrNotFound), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFatal(t *testing.T) {
	if os.Getenv("TEST_FATAL") == "1" {
		Fatal(fmt.Errorf("open store: %w", postgres.ErrEmbeddedCredentials))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal")
	cmd.Env = append(os.Environ(), "TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected process to exit with error, got %v", err)
	}
	if exitErr.ExitCode() != ExitConfig {
		t.Errorf("exit code = %d, want %d", exitErr.ExitCode(), ExitConfig)
	}
	out := stderr.String()
	if !strings.Contains(out, "Error: open store:") || !strings.Contains(out, "Hint:") {
		t.Errorf("unexpected stderr: %q", out)
	}
}
