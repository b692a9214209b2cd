package cli

import (
	"errors"
	"fmt"
)

// ErrDoctorIssuesFound makes `sakuga doctor` exit non-zero.
var ErrDoctorIssuesFound = errors.New("doctor found problems")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}
