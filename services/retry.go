package services

import (
	"errors"

	"gorm.io/gorm"
)

// retryRead re-issues a read-only query once when it fails with an
// infrastructure error. Domain outcomes like gorm.ErrRecordNotFound are
// returned as-is. Writes must never go through here; queries are rebuilt
// inside fn so the retry runs a fresh statement.
func retryRead(fn func() error) error {
	err := fn()
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fn()
}
