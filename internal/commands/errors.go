package commands

import (
	"errors"
	"fmt"

	"github.com/julianstephens/mellow/internal/coping"
	"github.com/julianstephens/mellow/internal/storage"
)

var (
	ErrEntryNotFound    = errors.New("journal entry not found")
	ErrJournalEmpty     = errors.New("no journal entries yet")
	ErrGuildRequired    = errors.New("this command can only be used in a server")
	ErrAlreadyCheckedIn = storage.ErrAlreadyCheckedIn
	ErrUnknownTopic     = coping.ErrUnknownTopic
	ErrNoResponses      = coping.ErrNoResponses
)

// ValidationError is returned for bad input before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
