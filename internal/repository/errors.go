package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
	// ErrTransactionFailed indicates the unit of work could not begin or commit.
	ErrTransactionFailed = errors.New("repository: transaction failed")
)
