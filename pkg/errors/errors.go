package errors

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable marks failures of the remote grade store, as opposed
// to business-rule rejections.
var ErrStoreUnavailable = errors.New("almacén de calificaciones no disponible")

// WriteError describes a failed write against the store. Op names the
// operation ("upsert_grade", "delete_grade", ...).
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// NewWriteError wraps err; nil stays nil.
func NewWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &WriteError{Op: op, Err: err}
}
