// internal/app/store/members/insert.go
package memberstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/panelhub/internal/app/system/mongoerr"
	"github.com/dalemusser/panelhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DuplicateError reports members rejected by a unique index.
type DuplicateError struct {
	Field    string // first offending field, e.g. "email"
	Inserted int    // documents that were stored anyway
	Err      error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s (%d inserted): %v", e.Field, e.Inserted, e.Err)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// InsertMany stores new members and returns how many were written.
//
// Missing ids are generated, status defaults to active, and joinedAt and
// lastActive default to the time of the call. manufacturerId is left null
// regardless of input; it is only set through AssignManufacturer.
//
// The insert is unordered: a duplicate does not stop the remaining rows.
// When any row hits a unique index the result is a *DuplicateError carrying
// the number of rows that did make it in.
func (s *Store) InsertMany(ctx context.Context, members []models.Member) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]any, len(members))
	for i := range members {
		m := &members[i]
		if m.ID.IsZero() {
			m.ID = primitive.NewObjectID()
		}
		if m.Status == "" {
			m.Status = models.MemberStatusActive
		}
		if m.JoinedAt.IsZero() {
			m.JoinedAt = now
		}
		if m.LastActive.IsZero() {
			m.LastActive = now
		}
		m.ManufacturerID = nil
		docs[i] = m
	}

	res, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(res.InsertedIDs), nil
	}

	inserted := 0
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		inserted = len(docs) - len(bwe.WriteErrors)
	}
	if field, ok := mongoerr.DupField(err); ok {
		return inserted, &DuplicateError{Field: field, Inserted: inserted, Err: err}
	}
	return inserted, fmt.Errorf("insert members: %w", err)
}
