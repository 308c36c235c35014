package db

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"salemre/backend/internal/repository"
)

// Operation performs one attempt. attempt starts at 0 so callers can derive
// a fresh candidate key (a slug suffix) per attempt.
type Operation func(attempt int) error

// IsDuplicateKeyError is a function that checks if an error is a duplicate key error.
type IsDuplicateKeyError func(err error) bool

const DefaultMaxRetries = 3

// Try executes an operation with default retry settings for duplicate key errors
// reported by any repository implementation.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, repository.IsDuplicate)
}

// WithRetries executes an operation, retrying up to maxRetries times while it
// fails with a duplicate key error.
func WithRetries(op Operation, maxRetries int, isDuplicateKey IsDuplicateKeyError) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op(attempt)
		if err == nil {
			return nil
		}
		if attempt == maxRetries || !isDuplicateKey(err) {
			break
		}
		time.Sleep(time.Duration(10*(attempt+1)) * time.Millisecond)
	}
	return err
}

// IsMongoDuplicateKeyError checks if an error from MongoDB is a duplicate key error (code 11000).
func IsMongoDuplicateKeyError(err error) bool {
	var e mongo.WriteException
	if errors.As(err, &e) {
		for _, we := range e.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, writeError := range bwe.WriteErrors {
			if writeError.Code == 11000 {
				return true
			}
		}
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 11000 {
		return true
	}
	return false
}
