package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineCallFailed matches every error returned by an engine call.
	ErrEngineCallFailed = errors.New("engine call failed")
	// ErrNotFound matches engine errors about a missing container or image.
	ErrNotFound = errors.New("not found")
)

// CallError wraps a failure from the engine with the operation and target it concerned.
type CallError struct {
	Op       string
	Target   string
	NotFound bool
	Err      error
}

func (e *CallError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Is makes every CallError match ErrEngineCallFailed, and not-found ones ErrNotFound.
func (e *CallError) Is(target error) bool {
	switch target {
	case ErrEngineCallFailed:
		return true
	case ErrNotFound:
		return e.NotFound
	}
	return false
}
