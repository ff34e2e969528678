// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios, for example
// ErrConflict signals that an operation cannot proceed due to existing
// dependent records (deleting a category that still has meals referencing
// it).
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a
// category with meals still assigned to it. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate-key violation (error
// 1062) on the named unique key. Passing an empty key matches any duplicate.
func isDuplicate(err error, key string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "1062") {
		return false
	}
	return key == "" || strings.Contains(msg, key)
}
