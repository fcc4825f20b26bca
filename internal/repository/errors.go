// Package repository implements row-level access to the MySQL credential
// and domain store. Sentinel errors defined here let handlers map failure
// scenarios onto HTTP statuses without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Handlers should
// translate this into an HTTP 404 (or, on the auth path, a generic 401 so
// the response does not reveal whether an account exists).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registration collides with an existing
// email. Handlers translate this into an HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they cannot act on. Handlers translate it into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as assigning an inactive role. Handlers
// translate it into an HTTP 409.
var ErrConflict = errors.New("conflict")

// DefaultPageSize bounds list queries when the caller does not specify a
// limit. This is a resource-protection policy, not a correctness rule:
// every listing repository method clamps to it.
const DefaultPageSize = 50

// ClampLimit applies the default page size to unset or oversized limits.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > DefaultPageSize {
		return DefaultPageSize
	}
	return limit
}
