// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/panelhub/internal/app/system/filters"
	"github.com/dalemusser/panelhub/internal/app/system/paging"
	"github.com/dalemusser/panelhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// Collection is where member documents live.
const Collection = "users"

var (
	// ErrNotFound is returned when no member matches the requested id.
	ErrNotFound = errors.New("member not found")
	// ErrDuplicate is matched (via errors.Is) by every *DuplicateError.
	ErrDuplicate = errors.New("duplicate member")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// List returns one page of members matching tree plus the total number of
// matches across all pages.
//
// The count and the page fetch are issued concurrently as two separate
// queries, so a write landing between them can make total disagree with the
// page contents by that write.
func (s *Store) List(ctx context.Context, tree filters.Tree, p paging.Params) ([]models.Member, int64, error) {
	filter := tree.BSON()

	var (
		total int64
		out   []models.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.c.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		cur, err := s.c.Find(gctx, filter, p.ApplyToFind(options.Find()))
		if err != nil {
			return fmt.Errorf("find members: %w", err)
		}
		defer cur.Close(gctx)

		page := make([]models.Member, 0, p.Limit)
		for cur.Next(gctx) {
			var m models.Member
			if err := cur.Decode(&m); err != nil {
				return fmt.Errorf("decode member: %w", err)
			}
			page = append(page, m)
		}
		if err := cur.Err(); err != nil {
			return fmt.Errorf("iterate members: %w", err)
		}
		out = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Count returns the number of members matching tree.
func (s *Store) Count(ctx context.Context, tree filters.Tree) (int64, error) {
	n, err := s.c.CountDocuments(ctx, tree.BSON())
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

// GetByID loads a member by its hex ObjectID.
// Malformed ids and missing documents both return ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (models.Member, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Member{}, ErrNotFound
	}
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Member{}, ErrNotFound
		}
		return models.Member{}, fmt.Errorf("get member %s: %w", id, err)
	}
	return m, nil
}

// AssignManufacturer sets manufacturerId on every member whose id is in ids
// with a single multi-document update, and returns how many documents were
// actually changed.
//
// Ids that are not valid ObjectIDs cannot match any member and are skipped.
// An empty (or entirely unmatched) list is a no-op that returns 0. Members
// already carrying manufacturerID are matched but not counted, so repeating
// the same request reports 0.
func (s *Store) AssignManufacturer(ctx context.Context, ids []string, manufacturerID string) (int64, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		bson.M{"$set": bson.M{"manufacturerId": manufacturerID}},
	)
	if err != nil {
		return 0, fmt.Errorf("assign manufacturer: %w", err)
	}
	return res.ModifiedCount, nil
}
