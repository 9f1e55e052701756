package cli

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/mrz1836/shamir-mpc/internal/secmem"
	sigilerr "github.com/mrz1836/shamir-mpc/pkg/errors"
)

// Prompt functions are stored in package-level variables so tests can
// substitute mock implementations without touching a terminal.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level function variables for testability
var (
	promptPasswordFn    = promptPassword
	promptNewPasswordFn = promptNewPassword
	promptConfirmFn     = promptConfirmation
	promptSecretFn      = promptSecretMaterial
)

// promptPassword prompts for a password with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassword prompts for a new export-encryption password with
// confirmation. The caller is responsible for zeroing the returned bytes
// after use.
func promptNewPassword() ([]byte, error) {
	password, err := promptPasswordFn("Enter export encryption password: ")
	if err != nil {
		return nil, err
	}

	if len(password) < 8 {
		secmem.Wipe(password)
		return nil, sigilerr.WithSuggestion(
			sigilerr.ErrInvalidParam,
			"password must be at least 8 characters",
		)
	}

	confirm, err := promptPasswordFn("Confirm password: ")
	if err != nil {
		secmem.Wipe(password)
		return nil, err
	}
	defer secmem.Wipe(confirm)

	if string(password) != string(confirm) {
		secmem.Wipe(password)
		return nil, sigilerr.WithSuggestion(
			sigilerr.ErrInvalidParam,
			"passwords do not match",
		)
	}

	return password, nil
}

// promptConfirmation asks the user to confirm a destructive or irreversible
// action before proceeding.
func promptConfirmation() bool {
	out(os.Stderr, "Proceed? [y/N]: ")

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// promptSecretMaterial prompts for the secret to be split into shares when
// it was not supplied via the --secret flag or stdin.
// The caller is responsible for zeroing the returned bytes after use.
func promptSecretMaterial() ([]byte, error) {
	secretBytes, err := promptPasswordFn("Enter secret to split: ")
	if err != nil {
		return nil, err
	}

	if len(secretBytes) == 0 {
		return nil, sigilerr.WithSuggestion(
			sigilerr.ErrInvalidParam,
			"no secret provided",
		)
	}

	return secretBytes, nil
}
