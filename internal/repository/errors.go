// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking allocator and the handlers to distinguish a missing row from a
// database failure without inspecting driver errors.
package repository

import (
    "database/sql"
    "errors"
)

// ErrNotFound is returned when the requested row does not exist.  Callers
// map it to the domain specific not-found condition.
var ErrNotFound = errors.New("record not found")

// notFound converts sql.ErrNoRows into ErrNotFound and leaves other errors
// untouched.
func notFound(err error) error {
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    return err
}
