package pipeline

import (
	"errors"
	"fmt"

	"go-scout-export/internal/model"
)

var (
	// ErrFetchTimeout is the cause of a fetch that exceeded its budget.
	ErrFetchTimeout = errors.New("fetch timed out")

	// ErrRenderTimeout is the cause of a render fan-out that exceeded its budget.
	ErrRenderTimeout = errors.New("render timed out")

	// ErrStopped is returned when a run was stopped from outside before it finished.
	ErrStopped = errors.New("export stopped")
)

// FetchError is an upstream source failure for one team.
type FetchError struct {
	Team model.Team
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch scouts for team %s: %v", e.Team, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NameResolutionError is logged and never aborts a run.
type NameResolutionError struct {
	Err error
}

func (e *NameResolutionError) Error() string {
	return fmt.Sprintf("resolve template names: %v", e.Err)
}

func (e *NameResolutionError) Unwrap() error { return e.Err }

// RenderError is fatal to the whole run.
type RenderError struct {
	GroupID string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render template %s: %v", e.GroupID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PublishError is an I/O failure while committing artifacts.
type PublishError struct {
	Location model.Location
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s/%s: %v", e.Location.RelativePath, e.Location.DisplayName, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// IsExpected reports whether an abort is an expected outcome that should be
// reported without escalation: a fetch timeout or an explicit stop.
func IsExpected(err error) bool {
	return errors.Is(err, ErrFetchTimeout) || errors.Is(err, ErrStopped)
}
