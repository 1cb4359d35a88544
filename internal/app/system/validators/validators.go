// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MembersCollection is the collection the member directory reads and writes.
const MembersCollection = "users"

// EnsureAll creates the members collection (if missing) and attaches its
// JSON-Schema validator. On servers that don't support collMod/validators
// (e.g. some DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	if _, err := ensureCollection(ctx, db, MembersCollection); err != nil {
		return errors.New(MembersCollection + ": " + err.Error())
	}
	if err := setValidator(ctx, db, MembersCollection, membersSchema()); err != nil {
		if isNoSuchCommand(err) || isNotImplemented(err) {
			zap.L().Info("validator skipped (unsupported)", zap.String("collection", MembersCollection))
			return nil
		}
		return errors.New(MembersCollection + ": " + err.Error())
	}
	return nil
}

// IsValidationFailure reports whether err is a document rejected by a validator.
func IsValidationFailure(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 121 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 121 {
				return true
			}
		}
	}
	return false
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	str      = bson.M{"bsonType": "string"}
	strs     = bson.M{"bsonType": "array", "items": str}
	num      = bson.M{"bsonType": "number"}
	count    = bson.M{"bsonType": "number", "minimum": 0}
	date     = bson.M{"bsonType": "date"}
	object   = func(props bson.M) bson.M { return bson.M{"bsonType": "object", "properties": props} }
	nullable = func(t string) bson.M { return bson.M{"bsonType": bson.A{t, "null"}} }
)

// membersSchema types the member document. Nothing is required beyond
// what the importers always write, so partially filled panel records stay
// valid; values that are present must have the right type and range.
func membersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"status"},
			"properties": bson.M{
				"firstName":  str,
				"lastName":   str,
				"email":      nullable("string"),
				"phone":      str,
				"company":    str,
				"department": str,
				"role":       str,
				"jobTitle":   str,
				"status":     bson.M{"bsonType": "string", "minLength": 1},

				"experience": object(bson.M{
					"yearsInIndustry": bson.M{"bsonType": "number", "minimum": 0},
					"expertise":       strs,
					"certifications":  strs,
				}),
				"preferences": object(bson.M{
					"language":             str,
					"timezone":             str,
					"communicationChannel": str,
				}),
				"demographics": object(bson.M{
					"ageRange":  str,
					"gender":    str,
					"education": str,
				}),
				"workHistory": object(bson.M{
					"currentPosition":        str,
					"previousPositions":      strs,
					"industrySpecialization": strs,
				}),
				"participation": object(bson.M{
					"surveysCompleted": count,
					"surveysInvited":   count,
					"lastResponseDate": date,
					"responseRate":     bson.M{"bsonType": "number", "minimum": 0, "maximum": 100},
					"avgResponseTime":  num,
					"responseQuality": object(bson.M{
						"avgCompletionRate":   num,
						"avgResponseLength":   num,
						"thoughtfulnessScore": num,
					}),
					"engagementHistory": bson.M{"bsonType": "array", "items": object(bson.M{
						"month":            bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}$"},
						"surveysCompleted": count,
						"responseTime":     num,
					})},
					"activityMetrics": object(bson.M{
						"loginFrequency":  num,
						"sessionDuration": num,
						"featuresUsed":    strs,
						"lastLoginStreak": count,
					}),
					"feedbackProvided": object(bson.M{
						"platformFeedback": count,
						"surveyFeedback":   count,
						"featureRequests":  count,
					}),
				}),
				"address": object(bson.M{
					"street":     str,
					"city":       str,
					"state":      str,
					"country":    str,
					"postalCode": str,
				}),
				"manufacturerId": nullable("string"),
				"joinedAt":       date,
				"lastActive":     date,
				"metadata":       bson.M{"bsonType": "object"},
			},
		},
	}
}
