// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberStatusActive is the lifecycle status given to newly imported members.
const MemberStatusActive = "active"

// Member is one survey-panel member stored in the users collection.
//
// Field names in bson match the document layout used by the panel importers
// (camelCase, nested blocks), so dot paths like "demographics.gender" or
// "participation.activityMetrics.lastLoginStreak" address the same values
// in filters, sorts and aggregation stages.
//
// NOTE:
//   - ManufacturerID is null until a bulk assignment sets it.
//   - The engagement score is derived during aggregation and is never stored here.
type Member struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName  string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName   string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Company    string             `bson:"company,omitempty" json:"company,omitempty"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	Role       string             `bson:"role,omitempty" json:"role,omitempty"`
	JobTitle   string             `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`

	Experience   Experience   `bson:"experience" json:"experience"`
	Preferences  Preferences  `bson:"preferences" json:"preferences"`
	Demographics Demographics `bson:"demographics" json:"demographics"`
	WorkHistory  WorkHistory  `bson:"workHistory" json:"workHistory"`

	Status string `bson:"status" json:"status"` // active by default

	Participation Participation `bson:"participation" json:"participation"`
	Address       Address       `bson:"address" json:"address"`

	ManufacturerID *string `bson:"manufacturerId" json:"manufacturerId"`

	JoinedAt   time.Time `bson:"joinedAt" json:"joinedAt"`
	LastActive time.Time `bson:"lastActive" json:"lastActive"`

	Metadata map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type Experience struct {
	YearsInIndustry *float64 `bson:"yearsInIndustry,omitempty" json:"yearsInIndustry,omitempty"`
	Expertise       []string `bson:"expertise,omitempty" json:"expertise,omitempty"`
	Certifications  []string `bson:"certifications,omitempty" json:"certifications,omitempty"`
}

type Preferences struct {
	Language             string `bson:"language,omitempty" json:"language,omitempty"`
	Timezone             string `bson:"timezone,omitempty" json:"timezone,omitempty"`
	CommunicationChannel string `bson:"communicationChannel,omitempty" json:"communicationChannel,omitempty"`
}

type Demographics struct {
	AgeRange  string `bson:"ageRange,omitempty" json:"ageRange,omitempty"`
	Gender    string `bson:"gender,omitempty" json:"gender,omitempty"`
	Education string `bson:"education,omitempty" json:"education,omitempty"`
}

type WorkHistory struct {
	CurrentPosition        string   `bson:"currentPosition,omitempty" json:"currentPosition,omitempty"`
	PreviousPositions      []string `bson:"previousPositions,omitempty" json:"previousPositions,omitempty"`
	IndustrySpecialization []string `bson:"industrySpecialization,omitempty" json:"industrySpecialization,omitempty"`
}

// Participation holds survey and activity metrics maintained by the
// participation-tracking processes. Optional counters are pointers so a
// missing value stays missing in the stored document.
type Participation struct {
	SurveysCompleted  int               `bson:"surveysCompleted" json:"surveysCompleted"`
	SurveysInvited    int               `bson:"surveysInvited" json:"surveysInvited"`
	LastResponseDate  *time.Time        `bson:"lastResponseDate,omitempty" json:"lastResponseDate,omitempty"`
	ResponseRate      *float64          `bson:"responseRate,omitempty" json:"responseRate,omitempty"` // 0–100
	AvgResponseTime   *float64          `bson:"avgResponseTime,omitempty" json:"avgResponseTime,omitempty"`
	ResponseQuality   ResponseQuality   `bson:"responseQuality" json:"responseQuality"`
	EngagementHistory []MonthlySnapshot `bson:"engagementHistory,omitempty" json:"engagementHistory,omitempty"`
	ActivityMetrics   ActivityMetrics   `bson:"activityMetrics" json:"activityMetrics"`
	FeedbackProvided  FeedbackProvided  `bson:"feedbackProvided" json:"feedbackProvided"`
}

type ResponseQuality struct {
	AvgCompletionRate   *float64 `bson:"avgCompletionRate,omitempty" json:"avgCompletionRate,omitempty"`
	AvgResponseLength   *float64 `bson:"avgResponseLength,omitempty" json:"avgResponseLength,omitempty"`
	ThoughtfulnessScore *float64 `bson:"thoughtfulnessScore,omitempty" json:"thoughtfulnessScore,omitempty"`
}

// MonthlySnapshot is one entry of the engagement time series.
type MonthlySnapshot struct {
	Month            string   `bson:"month" json:"month"` // YYYY-MM
	SurveysCompleted int      `bson:"surveysCompleted" json:"surveysCompleted"`
	ResponseTime     *float64 `bson:"responseTime,omitempty" json:"responseTime,omitempty"`
}

type ActivityMetrics struct {
	LoginFrequency  *float64 `bson:"loginFrequency,omitempty" json:"loginFrequency,omitempty"`
	SessionDuration *float64 `bson:"sessionDuration,omitempty" json:"sessionDuration,omitempty"`
	FeaturesUsed    []string `bson:"featuresUsed,omitempty" json:"featuresUsed,omitempty"`
	LastLoginStreak *int     `bson:"lastLoginStreak,omitempty" json:"lastLoginStreak,omitempty"`
}

type FeedbackProvided struct {
	PlatformFeedback *int `bson:"platformFeedback,omitempty" json:"platformFeedback,omitempty"`
	SurveyFeedback   *int `bson:"surveyFeedback,omitempty" json:"surveyFeedback,omitempty"`
	FeatureRequests  *int `bson:"featureRequests,omitempty" json:"featureRequests,omitempty"`
}

type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
}
