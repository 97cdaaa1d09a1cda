package domain

import "errors"

// Not-found failures.
var (
	// ErrStudentNotFound is returned when the student ID is unknown.
	ErrStudentNotFound = errors.New("student not found")
	// ErrItemNotFound indicates the catalog item does not exist.
	ErrItemNotFound = errors.New("catalog item not found")
	// ErrClaimNotFound indicates the topup claim does not exist.
	ErrClaimNotFound = errors.New("topup claim not found")
)

// State conflicts: the operation is not applicable in the current state.
var (
	// ErrAlreadyOwned is returned when purchasing an item the student
	// already holds an entitlement for.
	ErrAlreadyOwned = errors.New("item already owned")
	// ErrAlreadyPassed is returned when re-submitting an exam after passing.
	ErrAlreadyPassed = errors.New("exam already passed")
	// ErrAlreadyResolved is returned when resolving a non-pending claim.
	ErrAlreadyResolved = errors.New("claim already resolved")
	// ErrStudentExists is returned when the student number is taken.
	ErrStudentExists = errors.New("student number already registered")
)

// Shortfalls.
var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientPoints is returned when a redemption exceeds the points.
	ErrInsufficientPoints = errors.New("insufficient points")
)

// Access failures.
var (
	// ErrStudentBanned is returned for any commerce or exam operation by a
	// banned student.
	ErrStudentBanned = errors.New("student is banned")
	// ErrNotEntitled is returned when a student acts on content they have
	// not unlocked.
	ErrNotEntitled = errors.New("student not entitled to item")
)

// Input failures.
var (
	// ErrMalformedSubmission is returned when an answer set does not match
	// the lesson's question set shape.
	ErrMalformedSubmission = errors.New("malformed exam submission")
	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidInput is returned for requests missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// IsConflict reports whether err is a state-conflict failure.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyOwned) ||
		errors.Is(err, ErrAlreadyPassed) ||
		errors.Is(err, ErrAlreadyResolved) ||
		errors.Is(err, ErrStudentExists)
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrClaimNotFound)
}

// IsForbidden reports whether err is an access failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrStudentBanned) || errors.Is(err, ErrNotEntitled)
}

// IsShortfall reports whether err is a balance or points shortfall.
func IsShortfall(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrInsufficientPoints)
}

// IsMalformed reports whether err is an input-shape failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedSubmission) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidInput)
}
