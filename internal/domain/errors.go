package domain

import (
	"errors"
	"fmt"
)

// Business conditions are returned, never panicked. Callers match with errors.Is.
var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrIncompleteModules   = errors.New("incomplete modules")
	ErrDuplicateEnrollment = errors.New("duplicate enrollment")
	ErrNotFound            = errors.New("not found")
	ErrPersistence         = errors.New("persistence failure")
	ErrInvalidValue        = errors.New("invalid value")
)

// TransitionError describes a rejected phase/status change.
type TransitionError struct {
	Op     string
	Phase  Phase
	Status CaseStatus
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s (phase=%s status=%s)", e.Op, e.Reason, e.Phase, e.Status)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// IncompleteModulesError carries the counts that blocked a conclusion.
type IncompleteModulesError struct {
	Done  int
	Total int
}

func (e *IncompleteModulesError) Error() string {
	if e.Total == 0 {
		return "conclude: no modules enrolled"
	}
	return fmt.Sprintf("conclude: %d of %d modules finished", e.Done, e.Total)
}

func (e *IncompleteModulesError) Unwrap() error { return ErrIncompleteModules }

func transitionErr(op string, c *Case, reason string) error {
	return &TransitionError{Op: op, Phase: c.Phase, Status: c.Status, Reason: reason}
}
