package repositories

import (
	stderrors "errors"
	"fmt"

	"friend-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

// maxConflictRetries bounds how often a read-modify-write transaction is replayed
// after Badger detected a concurrent write on one of the keys it read.
const maxConflictRetries = 3

// update runs fn in a read-write transaction, replaying it on conflicts.
// The transaction re-reads everything it needs on every attempt, so a replay never
// writes over a newer version.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if !stderrors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// classify keeps domain errors intact and turns everything else into a persistence failure.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, errors.ErrNotFound),
		stderrors.Is(err, errors.ErrUnauthorized),
		stderrors.Is(err, errors.ErrValidation):
		return err
	default:
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
}
