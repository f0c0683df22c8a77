package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMethod    = errors.New("invalid retrieval method")
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyCorpus      = errors.New("no training patterns found")
	ErrArtifactNotFound = errors.New("index artifact not found")
	ErrCorruptArtifact  = errors.New("index artifact corrupt")
	ErrUnknownTopic     = errors.New("unknown topic")
	ErrBackendDisabled  = errors.New("backend disabled")
)

// Exit codes returned by the faqbot binary.
const (
	ExitOK       = 0
	ExitInternal = 1
	ExitUsage    = 2
	ExitNoIndex  = 3
	ExitData     = 4
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownTopic):
		return ExitUsage
	case errors.Is(err, ErrArtifactNotFound):
		return ExitNoIndex
	case errors.Is(err, ErrEmptyCorpus), errors.Is(err, ErrCorruptArtifact):
		return ExitData
	default:
		return ExitInternal
	}
}
