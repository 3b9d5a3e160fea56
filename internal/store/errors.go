package store

import "errors"

var (
	ErrNotFound  = errors.New("store: resource not found")
	ErrDuplicate = errors.New("store: duplicate resource")
	// ErrLogin signals that a scoped resolver could not be acquired.
	ErrLogin = errors.New("store: unable to acquire service resolver")
)
