// Package engagementqueries runs the engagement statistics aggregation over
// the member collection.
//
// The per-member stages are generated from the threshold tables in
// domain/engagement, so a member lands in the same tier here as it does
// through engagement.Evaluate.
package engagementqueries

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dalemusser/panelhub/internal/domain/engagement"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Segment identifies one demographic segment. Missing values decode as
// empty strings and a nil YearsInIndustry.
type Segment struct {
	Gender          string   `bson:"gender" json:"gender"`
	AgeRange        string   `bson:"ageRange" json:"ageRange"`
	Education       string   `bson:"education" json:"education"`
	YearsInIndustry *float64 `bson:"yearsInIndustry" json:"yearsInIndustry"`
}

// LevelStats aggregates the members of one segment that share a tier.
// Averages over fields no member in the group carries are nil.
type LevelStats struct {
	Level               engagement.Tier `bson:"level" json:"level"`
	Count               int64           `bson:"count" json:"count"`
	AvgEngagementScore  *float64        `bson:"avgEngagementScore" json:"avgEngagementScore"`
	AvgSurveysCompleted *float64        `bson:"avgSurveysCompleted" json:"avgSurveysCompleted"`
	AvgResponseRate     *float64        `bson:"avgResponseRate" json:"avgResponseRate"`
	AvgLoginFrequency   *float64        `bson:"avgLoginFrequency" json:"avgLoginFrequency"`
}

// SegmentReport is one row of the engagement statistics report.
//
// OverallAvgEngagementScore is the plain mean of the per-tier averages in
// EngagementLevels. It is not weighted by tier size.
type SegmentReport struct {
	ID                        Segment      `bson:"_id" json:"_id"`
	EngagementLevels          []LevelStats `bson:"engagementLevels" json:"engagementLevels"`
	TotalCount                int64        `bson:"totalCount" json:"totalCount"`
	OverallAvgEngagementScore *float64     `bson:"overallAvgEngagementScore" json:"overallAvgEngagementScore"`
}

// field paths used by the pipeline
const (
	pLastActive       = "$lastActive"
	pLoginStreak      = "$participation.activityMetrics.lastLoginStreak"
	pThoughtfulness   = "$participation.responseQuality.thoughtfulnessScore"
	pPlatformFeedback = "$participation.feedbackProvided.platformFeedback"
	pSurveyFeedback   = "$participation.feedbackProvided.surveyFeedback"
	pFeatureRequests  = "$participation.feedbackProvided.featureRequests"
	pSurveysCompleted = "$participation.surveysCompleted"
	pSurveysInvited   = "$participation.surveysInvited"
	pResponseRate     = "$participation.responseRate"
	pLoginFrequency   = "$participation.activityMetrics.loginFrequency"
)

func ifNull0(path string) bson.M {
	return bson.M{"$ifNull": bson.A{path, 0}}
}

func activityWeightExpr(now time.Time) bson.M {
	branches := make(bson.A, 0, len(engagement.RecencySteps))
	for _, s := range engagement.RecencySteps {
		branches = append(branches, bson.M{
			"case": bson.M{"$gte": bson.A{pLastActive, now.AddDate(0, 0, -s.Days)}},
			"then": s.Weight,
		})
	}
	return bson.M{"$switch": bson.M{"branches": branches, "default": 0}}
}

func loginStreakWeightExpr() bson.M {
	branches := make(bson.A, 0, len(engagement.StreakSteps))
	for _, s := range engagement.StreakSteps {
		branches = append(branches, bson.M{
			"case": bson.M{"$gte": bson.A{pLoginStreak, s.Min}},
			"then": s.Weight,
		})
	}
	return bson.M{"$switch": bson.M{"branches": branches, "default": 0}}
}

func tierExpr() bson.M {
	branches := make(bson.A, 0, len(engagement.TierSteps))
	for _, s := range engagement.TierSteps {
		branches = append(branches, bson.M{
			"case": bson.M{"$gte": bson.A{"$engagementScore", s.Min}},
			"then": string(s.Tier),
		})
	}
	return bson.M{"$switch": bson.M{"branches": branches, "default": string(engagement.TierLow)}}
}

// Pipeline builds the aggregation evaluated as of now.
//
// Each derived value gets its own $addFields stage because later stages
// read the fields earlier ones produce. The two $group stages collapse
// members into (segment, tier) rows and then into one document per segment.
func Pipeline(now time.Time) []bson.M {
	return []bson.M{
		{"$addFields": bson.M{"activityWeight": activityWeightExpr(now)}},
		{"$addFields": bson.M{"loginStreakWeight": loginStreakWeightExpr()}},
		{"$addFields": bson.M{"responseQualityWeight": bson.M{
			"$multiply": bson.A{ifNull0(pThoughtfulness), engagement.ThoughtfulnessFactor},
		}}},
		{"$addFields": bson.M{"feedbackWeight": bson.M{
			"$add": bson.A{ifNull0(pPlatformFeedback), ifNull0(pSurveyFeedback), ifNull0(pFeatureRequests)},
		}}},
		{"$addFields": bson.M{"responseRateWeight": bson.M{"$cond": bson.M{
			"if": bson.M{"$gt": bson.A{pSurveysInvited, 0}},
			"then": bson.M{"$multiply": bson.A{
				bson.M{"$divide": bson.A{ifNull0(pSurveysCompleted), pSurveysInvited}},
				engagement.ResponseRateFactor,
			}},
			"else": 0,
		}}}},
		{"$addFields": bson.M{"engagementScore": bson.M{"$add": bson.A{
			bson.M{"$multiply": bson.A{ifNull0(pSurveysCompleted), engagement.CompletedFactor}},
			"$activityWeight",
			"$loginStreakWeight",
			"$responseQualityWeight",
			"$feedbackWeight",
			"$responseRateWeight",
		}}}},
		{"$addFields": bson.M{"engagementLevel": tierExpr()}},
		{"$group": bson.M{
			"_id": bson.M{
				"gender":          "$demographics.gender",
				"ageRange":        "$demographics.ageRange",
				"education":       "$demographics.education",
				"yearsInIndustry": "$experience.yearsInIndustry",
				"engagementLevel": "$engagementLevel",
			},
			"count":               bson.M{"$sum": 1},
			"avgEngagementScore":  bson.M{"$avg": "$engagementScore"},
			"avgSurveysCompleted": bson.M{"$avg": pSurveysCompleted},
			"avgResponseRate":     bson.M{"$avg": pResponseRate},
			"avgLoginFrequency":   bson.M{"$avg": pLoginFrequency},
		}},
		{"$group": bson.M{
			"_id": bson.M{
				"gender":          "$_id.gender",
				"ageRange":        "$_id.ageRange",
				"education":       "$_id.education",
				"yearsInIndustry": "$_id.yearsInIndustry",
			},
			"engagementLevels": bson.M{"$push": bson.M{
				"level":               "$_id.engagementLevel",
				"count":               "$count",
				"avgEngagementScore":  "$avgEngagementScore",
				"avgSurveysCompleted": "$avgSurveysCompleted",
				"avgResponseRate":     "$avgResponseRate",
				"avgLoginFrequency":   "$avgLoginFrequency",
			}},
			"totalCount":                bson.M{"$sum": "$count"},
			"overallAvgEngagementScore": bson.M{"$avg": "$avgEngagementScore"},
		}},
	}
}

// Aggregate runs Pipeline over every member in coll as of now.
//
// Tiers within a report are ordered from Champion down to Low Engagement.
// Reports are ordered by segment so repeated calls over the same data
// return identical output.
func Aggregate(ctx context.Context, coll *mongo.Collection, now time.Time) ([]SegmentReport, error) {
	cur, err := coll.Aggregate(ctx, Pipeline(now))
	if err != nil {
		return nil, fmt.Errorf("engagement aggregate: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]SegmentReport, 0)
	for cur.Next(ctx) {
		var row SegmentReport
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode engagement segment: %w", err)
		}
		slices.SortStableFunc(row.EngagementLevels, func(a, b LevelStats) int {
			return tierRank(a.Level) - tierRank(b.Level)
		})
		out = append(out, row)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate engagement segments: %w", err)
	}

	slices.SortFunc(out, compareSegments)
	return out, nil
}

func tierRank(t engagement.Tier) int {
	for i, s := range engagement.TierSteps {
		if s.Tier == t {
			return i
		}
	}
	return len(engagement.TierSteps)
}

func compareSegments(a, b SegmentReport) int {
	x, y := a.ID, b.ID
	if c := cmp.Compare(x.Gender, y.Gender); c != 0 {
		return c
	}
	if c := cmp.Compare(x.AgeRange, y.AgeRange); c != 0 {
		return c
	}
	if c := cmp.Compare(x.Education, y.Education); c != 0 {
		return c
	}
	switch {
	case x.YearsInIndustry == nil && y.YearsInIndustry == nil:
		return 0
	case x.YearsInIndustry == nil:
		return -1
	case y.YearsInIndustry == nil:
		return 1
	}
	return cmp.Compare(*x.YearsInIndustry, *y.YearsInIndustry)
}
