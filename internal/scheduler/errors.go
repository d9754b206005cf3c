package scheduler

import (
	"errors"
	"fmt"
)

// ErrCourseNotFound is matched by every CourseNotFoundError via errors.Is.
var ErrCourseNotFound = errors.New("course not found")

// CourseNotFoundError reports a requested course code missing from the catalog.
type CourseNotFoundError struct {
	Code string
}

func (e *CourseNotFoundError) Error() string {
	return fmt.Sprintf("course %s not found in catalog", e.Code)
}

// Is lets callers match with errors.Is(err, ErrCourseNotFound).
func (e *CourseNotFoundError) Is(target error) bool {
	return target == ErrCourseNotFound
}
