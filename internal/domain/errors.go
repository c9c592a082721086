package domain

import "errors"

var (
	// ErrLocationNotFound is returned when an address is not part of the location set.
	ErrLocationNotFound = errors.New("location not found")

	// ErrPackageNotFound is returned when a package id cannot be resolved.
	ErrPackageNotFound = errors.New("package not found")

	// ErrCapacityExceeded is returned when loading onto a full truck.
	ErrCapacityExceeded = errors.New("truck at capacity")

	// ErrEmptyManifest is returned when delivering from a truck with nothing loaded.
	ErrEmptyManifest = errors.New("truck manifest is empty")

	// ErrInvalidTransition is returned when advancing a package that is already delivered.
	ErrInvalidTransition = errors.New("invalid package status transition")

	// ErrUnreachablePackage is returned when a package can never be placed on any truck.
	ErrUnreachablePackage = errors.New("package cannot be placed on any truck")
)
