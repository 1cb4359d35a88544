package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/panelhub/internal/app/system/validators"
	"github.com/dalemusser/panelhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{"name": validators.MembersCollection})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("expected collection %q to exist, got %v", validators.MembersCollection, names)
	}
}

func TestMembersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection(validators.MembersCollection)
	now := time.Now().UTC()

	tests := []struct {
		name  string
		doc   bson.M
		valid bool
	}{
		{"minimal", bson.M{"status": "active"}, true},
		{"full", bson.M{
			"email":          "ada@example.com",
			"status":         "active",
			"manufacturerId": nil,
			"joinedAt":       now,
			"demographics":   bson.M{"gender": "female"},
			"participation": bson.M{
				"surveysCompleted": 12,
				"responseRate":     88.5,
				"activityMetrics":  bson.M{"lastLoginStreak": 4},
			},
		}, true},
		{"missing status", bson.M{"email": "x@example.com"}, false},
		{"empty status", bson.M{"status": ""}, false},
		{"response rate above 100", bson.M{"status": "active", "participation": bson.M{"responseRate": 150}}, false},
		{"negative surveys", bson.M{"status": "active", "participation": bson.M{"surveysCompleted": -1}}, false},
		{"joinedAt as string", bson.M{"status": "active", "joinedAt": "2024-01-01"}, false},
		{"manufacturerId as number", bson.M{"status": "active", "manufacturerId": 7}, false},
		{"bad history month", bson.M{"status": "active", "participation": bson.M{
			"engagementHistory": bson.A{bson.M{"month": "March", "surveysCompleted": 1}},
		}}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.doc["_id"] = primitive.NewObjectID()
			_, err := coll.InsertOne(ctx, tc.doc)
			if tc.valid && err != nil {
				t.Fatalf("expected insert to succeed, got %v", err)
			}
			if !tc.valid && !validators.IsValidationFailure(err) {
				t.Fatalf("expected validation failure, got %v", err)
			}
		})
	}
}

func TestIsValidationFailure_Nil(t *testing.T) {
	if validators.IsValidationFailure(nil) {
		t.Error("nil error is not a validation failure")
	}
}
