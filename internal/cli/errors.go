package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// ExitCode represents the exit code for an error.
type ExitCode int

// Exit code constants.
const (
	ExitSuccess         ExitCode = 0
	ExitGeneralError    ExitCode = 1
	ExitValidationError ExitCode = 2
	ExitPolicyError     ExitCode = 3
	ExitKeyStateError   ExitCode = 4
	ExitPassphraseError ExitCode = 5
	ExitNotFoundError   ExitCode = 6
	ExitIOError         ExitCode = 7
)

// Error represents a CLI error with an exit code.
type Error struct {
	Message  string
	ExitCode ExitCode
}

// NewError creates a new CLI error.
func NewError(message string, code ExitCode) *Error {
	return &Error{
		Message:  message,
		ExitCode: code,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WrapError converts a domain error into a CLI error carrying the matching
// exit code.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var (
		precondition pgperrors.PreconditionError
		notFound     pgperrors.NotFoundError
		passphrase   pgperrors.PassphraseError
		revoked      pgperrors.RevokedKeyError
		expired      pgperrors.ExpiredKeyError
		unacceptable pgperrors.UnacceptableCertificationKeyError
		missing      pgperrors.MissingSecretKeyError
		pathErr      *os.PathError
	)
	switch {
	case errors.As(err, &precondition):
		return NewError(err.Error(), ExitValidationError)
	case errors.As(err, &unacceptable):
		return NewError(err.Error(), ExitPolicyError)
	case errors.As(err, &revoked), errors.As(err, &expired), errors.As(err, &missing):
		return NewError(err.Error(), ExitKeyStateError)
	case errors.As(err, &passphrase):
		return NewError(err.Error(), ExitPassphraseError)
	case errors.As(err, &notFound):
		return NewError(err.Error(), ExitNotFoundError)
	case errors.As(err, &pathErr):
		return NewError(err.Error(), ExitIOError)
	}
	return NewError(err.Error(), ExitGeneralError)
}

// PrintError prints an error to stderr and returns the exit code.
func PrintError(w io.Writer, err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}

	cliErr := WrapError(err)
	if cliErr.Message != "" {
		_, _ = fmt.Fprintf(w, "%s\n", cliErr.Message)
	}
	return cliErr.ExitCode
}

// ExitWithError exits the program with the given error.
func ExitWithError(err error) {
	code := PrintError(os.Stderr, err)
	os.Exit(int(code))
}
