package domain

import "errors"

var (
	// ErrProjectNotFound indicates the requested project is not in the mirror.
	ErrProjectNotFound = errors.New("project not found")

	// ErrUnknownDepartment indicates a department name could not be parsed.
	ErrUnknownDepartment = errors.New("unknown department")

	// ErrDuplicateDepartment indicates a department named twice, for
	// example by its canonical name and an alias.
	ErrDuplicateDepartment = errors.New("duplicate department")

	// ErrInvalidProjectID indicates a project ID that is not a positive integer.
	ErrInvalidProjectID = errors.New("invalid project id")
)
