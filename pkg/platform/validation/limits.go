package validation

import (
	"fmt"

	dErrors "signup/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize bounds every JSON request body (64 KB).
	MaxBodySize = 64 * 1024
)

// Slice element count limits
const (
	// MaxFieldEdits is the largest batch a single field patch may carry.
	MaxFieldEdits = 32
)

// String element length limits
const (
	MaxFieldValueLength = 256
	MaxPostalCodeLength = 16
	MaxEmailLength      = 255
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
