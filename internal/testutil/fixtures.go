package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/panelhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts m into the users collection.
// A missing ID, status or timestamps are filled in; everything else is stored as given.
func (f *Fixtures) CreateMember(ctx context.Context, m models.Member) models.Member {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
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

	if _, err := f.db.Collection("users").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateNamedMember creates a member with just a name, email and gender.
func (f *Fixtures) CreateNamedMember(ctx context.Context, first, last, email, gender string) models.Member {
	f.t.Helper()
	return f.CreateMember(ctx, models.Member{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		Demographics: models.Demographics{Gender: gender},
	})
}

// Ptr returns a pointer to v. Handy for the optional numeric fields on Member.
func Ptr[T any](v T) *T { return &v }
