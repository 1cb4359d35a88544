// Package engagement defines how a member's engagement score and tier are
// derived from participation and activity data.
//
// The threshold tables below are the single source of truth: the pure
// functions in this package evaluate them in Go, and the aggregation
// pipeline in store/queries/engagementqueries renders the same tables as
// $switch branches so both paths classify a member identically.
package engagement

import (
	"time"

	"github.com/dalemusser/panelhub/internal/domain/models"
)

// Tier is the categorical label derived from the engagement score.
type Tier string

const (
	TierChampion          Tier = "Champion"
	TierHighlyEngaged     Tier = "Highly Engaged"
	TierEngaged           Tier = "Engaged"
	TierModeratelyEngaged Tier = "Moderately Engaged"
	TierSlightlyEngaged   Tier = "Slightly Engaged"
	TierLow               Tier = "Low Engagement"
)

// RecencyStep awards Weight when lastActive is no older than Days days.
type RecencyStep struct {
	Days   int
	Weight float64
}

// StreakStep awards Weight when the login streak is at least Min.
type StreakStep struct {
	Min    int
	Weight float64
}

// TierStep assigns Tier when the score is at least Min.
type TierStep struct {
	Min  float64
	Tier Tier
}

// Steps are evaluated in order; the first satisfied step wins.
var (
	RecencySteps = []RecencyStep{
		{Days: 7, Weight: 10},
		{Days: 14, Weight: 8},
		{Days: 30, Weight: 6},
		{Days: 60, Weight: 3},
		{Days: 90, Weight: 1},
	}

	StreakSteps = []StreakStep{
		{Min: 10, Weight: 5},
		{Min: 5, Weight: 3},
		{Min: 2, Weight: 1},
	}

	TierSteps = []TierStep{
		{Min: 25, Tier: TierChampion},
		{Min: 15, Tier: TierHighlyEngaged},
		{Min: 10, Tier: TierEngaged},
		{Min: 5, Tier: TierModeratelyEngaged},
		{Min: 2, Tier: TierSlightlyEngaged},
	}
)

const (
	// ThoughtfulnessFactor scales responseQuality.thoughtfulnessScore.
	ThoughtfulnessFactor = 0.5
	// ResponseRateFactor scales surveysCompleted/surveysInvited.
	ResponseRateFactor = 5.0
	// CompletedFactor scales surveysCompleted in the final score.
	CompletedFactor = 2.0
)

// Breakdown is every derived value for one member, in evaluation order.
type Breakdown struct {
	ActivityWeight        float64 `json:"activityWeight"`
	LoginStreakWeight     float64 `json:"loginStreakWeight"`
	ResponseQualityWeight float64 `json:"responseQualityWeight"`
	FeedbackWeight        float64 `json:"feedbackWeight"`
	ResponseRateWeight    float64 `json:"responseRateWeight"`
	Score                 float64 `json:"engagementScore"`
	Tier                  Tier    `json:"engagementLevel"`
}

// ActivityWeight returns the recency weight of lastActive relative to now.
// A zero lastActive never matches any step.
func ActivityWeight(lastActive, now time.Time) float64 {
	if lastActive.IsZero() {
		return 0
	}
	for _, s := range RecencySteps {
		if !lastActive.Before(now.AddDate(0, 0, -s.Days)) {
			return s.Weight
		}
	}
	return 0
}

// LoginStreakWeight returns the weight for activityMetrics.lastLoginStreak.
// A missing streak scores 0.
func LoginStreakWeight(streak *int) float64 {
	if streak == nil {
		return 0
	}
	for _, s := range StreakSteps {
		if *streak >= s.Min {
			return s.Weight
		}
	}
	return 0
}

// ResponseQualityWeight is thoughtfulnessScore × 0.5, missing counted as 0.
func ResponseQualityWeight(q models.ResponseQuality) float64 {
	return floatOr0(q.ThoughtfulnessScore) * ThoughtfulnessFactor
}

// FeedbackWeight sums the three feedback counters, missing counted as 0.
func FeedbackWeight(f models.FeedbackProvided) float64 {
	return float64(intOr0(f.PlatformFeedback) + intOr0(f.SurveyFeedback) + intOr0(f.FeatureRequests))
}

// ResponseRateWeight is (completed/invited) × 5, or 0 when nothing was sent.
func ResponseRateWeight(completed, invited int) float64 {
	if invited <= 0 {
		return 0
	}
	return float64(completed) / float64(invited) * ResponseRateFactor
}

// Classify maps a score to its tier.
func Classify(score float64) Tier {
	for _, s := range TierSteps {
		if score >= s.Min {
			return s.Tier
		}
	}
	return TierLow
}

// Evaluate derives every engagement value for m as of now.
// It has no side effects and never touches the member record.
func Evaluate(m models.Member, now time.Time) Breakdown {
	p := m.Participation
	b := Breakdown{
		ActivityWeight:        ActivityWeight(m.LastActive, now),
		LoginStreakWeight:     LoginStreakWeight(p.ActivityMetrics.LastLoginStreak),
		ResponseQualityWeight: ResponseQualityWeight(p.ResponseQuality),
		FeedbackWeight:        FeedbackWeight(p.FeedbackProvided),
		ResponseRateWeight:    ResponseRateWeight(p.SurveysCompleted, p.SurveysInvited),
	}
	b.Score = float64(p.SurveysCompleted)*CompletedFactor +
		b.ActivityWeight +
		b.LoginStreakWeight +
		b.ResponseQualityWeight +
		b.FeedbackWeight +
		b.ResponseRateWeight
	b.Tier = Classify(b.Score)
	return b
}

func floatOr0(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOr0(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
