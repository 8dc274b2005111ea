// Package repository contains the data access layer.  This file defines
// error values and helpers shared across repositories.  Sentinel errors
// let higher layers distinguish failure scenarios with errors.Is instead
// of parsing driver messages; the driver-message inspection is confined
// to the helpers below.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as attempting to delete an event
// that still has live bookings.  Handlers should translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error 1062, raised when a unique key would be violated).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// isForeignKeyRestrict reports whether err is a MySQL restricted-delete
// error (error 1451, raised when child rows still reference the row).
func isForeignKeyRestrict(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1451")
}
