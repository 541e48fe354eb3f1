// Package repository holds the MySQL data access layer.  The sentinel
// errors below let higher layers tell failure scenarios apart without
// inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidStatus is returned when a write carries a reservation status
// outside the known set.  Handlers translate it into an HTTP 400.
var ErrInvalidStatus = errors.New("invalid reservation status")
