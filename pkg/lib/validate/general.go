package validate

import (
	"fmt"
	"strings"
)

// NotBlank checks if the provided string is not empty or consisting only of whitespace.
// It returns an error if the string is blank, using the provided message and arguments.
func NotBlank(s string, msg string, args ...any) error {
	if strings.TrimSpace(s) == "" {
		return createError(msg, args...)
	}
	return nil
}

// OneOf checks that value is one of the allowed values.
func OneOf[T comparable](value T, allowed []T, msg string, args ...any) error {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return createError(msg, args...)
}

func createError(msg string, args ...any) error {
	return fmt.Errorf(msg, args...)
}
