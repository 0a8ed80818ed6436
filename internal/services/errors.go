package services

import "strings"

// ValidationError aggregates every violated input rule so the caller sees the
// full list, not just the first failure.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

// UnverifiedError means the credentials were fine but the email is not
// confirmed yet; it carries the email so the caller can route to OTP entry.
type UnverifiedError struct {
	Email string
}

func (e *UnverifiedError) Error() string {
	return "email not verified"
}
