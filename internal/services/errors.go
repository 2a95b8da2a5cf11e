package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCollaborator marks failures of an external fetch collaborator;
	// the affected candidate stays pending.
	ErrCollaborator = errors.New("collaborator error")
	// ErrLedger marks ledger I/O failures other than a missing file; these
	// abort the run rather than risk silently dropped rows.
	ErrLedger = errors.New("ledger error")
	// ErrSession marks an unusable feed-driving session.
	ErrSession = errors.New("session error")
	// ErrValidation marks malformed input or configuration.
	ErrValidation = errors.New("validation error")
	// ErrTimeout marks an operation that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrLedger
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the whole run instead of
// failing a single candidate.
func IsFatal(err error) bool {
	return errors.Is(err, ErrLedger)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
