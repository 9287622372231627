package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Sentinel errors of the facade, checked with errors.Is.
var (
	// ErrAlreadyUpToDate is returned by Fetch when the mirror already has
	// every ref of the remote.
	ErrAlreadyUpToDate = errors.New("already up to date")

	// ErrAuthRequired is returned when the remote asks for credentials that
	// were not supplied.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthFailed is returned when the remote rejected the credentials.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRepositoryMissing is returned when no repository exists locally or
	// at the remote URL.
	ErrRepositoryMissing = errors.New("repository does not exist")

	// ErrInvalidRef is returned for malformed arguments and options.
	ErrInvalidRef = errors.New("invalid reference")

	// ErrResolveFailed is returned when a remote or revision cannot be resolved.
	ErrResolveFailed = errors.New("cannot resolve revision")
)

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// mapError translates go-git and transport errors into sentinels. Context
// errors pass through unchanged so callers can tell cancellation apart.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return ErrAlreadyUpToDate
	case errors.Is(err, transport.ErrAuthenticationRequired):
		return WrapError(ErrAuthRequired, err.Error())
	case errors.Is(err, transport.ErrAuthorizationFailed):
		return WrapError(ErrAuthFailed, err.Error())
	case errors.Is(err, transport.ErrRepositoryNotFound),
		errors.Is(err, git.ErrRepositoryNotExists):
		return WrapError(ErrRepositoryMissing, err.Error())
	case errors.Is(err, git.ErrRemoteNotFound):
		return WrapError(ErrResolveFailed, err.Error())
	default:
		return err
	}
}
