package errors

import (
	"errors"
	"fmt"
)

type Category string

const (
	CategoryUsage    Category = "usage"
	CategoryIO       Category = "io_failure"
	CategoryInternal Category = "internal_failure"
)

type classifiedError struct {
	category Category
	code     string
	hint     string
	cause    error
}

func (e *classifiedError) Error() string {
	if e.cause == nil {
		return "unknown error"
	}
	return e.cause.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}

// Wrap attaches a category, a stable code and an operator hint to cause.
func Wrap(cause error, category Category, code, hint string) error {
	if cause == nil {
		return nil
	}
	return &classifiedError{
		category: category,
		code:     code,
		hint:     hint,
		cause:    cause,
	}
}

// Usagef builds a usage error. Usage errors are raised before any input is
// processed and map to exit status 2.
func Usagef(code, format string, args ...interface{}) error {
	return Wrap(fmt.Errorf(format, args...), CategoryUsage, code, "")
}

// IO wraps a file-system failure.
func IO(cause error, code string) error {
	return Wrap(cause, CategoryIO, code, "")
}

func CategoryOf(err error) Category {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.category
	}
	return ""
}

func CodeOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.code
	}
	return ""
}

func HintOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.hint
	}
	return ""
}

func IsUsage(err error) bool {
	return CategoryOf(err) == CategoryUsage
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsUsage(err):
		return 2
	default:
		return 1
	}
}
