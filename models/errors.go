package models

import "errors"

// Store-level sentinels. Store implementations translate driver errors into
// these so callers never depend on a specific driver.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)
