package validate

import (
	"golang.org/x/exp/constraints"
)

// Number covers the integer and floating point types accepted by the numeric checks.
type Number interface {
	constraints.Integer | constraints.Float
}

// IsGreaterThanZero checks if the provided numeric value (of type T) is greater than zero.
// It returns an error if the value is not greater than zero, using the provided message and arguments.
func IsGreaterThanZero[T Number](value T, msg string, args ...any) error {
	if value <= 0 {
		return createError(msg, args...)
	}
	return nil
}

// IsGreaterOrEqualToZero checks if the provided numeric value (of type T) is greater or equal to zero.
// It returns an error if the value is less than zero, using the provided message and arguments.
func IsGreaterOrEqualToZero[T Number](value T, msg string, args ...any) error {
	if value < 0 {
		return createError(msg, args...)
	}
	return nil
}

// IsInRange checks that min <= value <= max.
func IsInRange[T Number](value, min, max T, msg string, args ...any) error {
	if value < min || value > max {
		return createError(msg, args...)
	}
	return nil
}

// IsPowerOfTwo checks that value is a positive power of two.
func IsPowerOfTwo[T constraints.Integer](value T, msg string, args ...any) error {
	if value <= 0 || value&(value-1) != 0 {
		return createError(msg, args...)
	}
	return nil
}
