package workflow

import "errors"

var (
	// ErrPrerequisite is returned when a stage action is invoked without its
	// upstream inputs. Nothing is changed and no global error is recorded.
	ErrPrerequisite = errors.New("stage prerequisites missing")
	// ErrOutputMismatch is returned by Advance when the output does not belong to the stage.
	ErrOutputMismatch = errors.New("output does not match stage")
	// ErrSuperseded is returned when a reset happened while a stage call was in flight.
	ErrSuperseded = errors.New("project was reset while the stage was running")
	// ErrUnavailable is returned when the capability for an action is not configured.
	ErrUnavailable = errors.New("capability not configured")
)

// ErrIncomplete is returned by ExportProject when the project lacks the
// content an export needs. Unlike ErrPrerequisite it is also recorded as the
// global error.
var ErrIncomplete = errors.New("project is incomplete")
