// internal/app/system/csvutil/columns.go
package csvutil

import (
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/panelhub/internal/app/system/inputval"
	"github.com/dalemusser/panelhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// setter stores one cell into m, returning a reason when the value is rejected.
type setter func(m *models.Member, v string) string

type column struct {
	names []string // accepted header spellings, compared case-insensitively
	set   setter
}

// ListSeparator splits multi-valued cells such as expertise.
const ListSeparator = ";"

func text(dst func(*models.Member) *string) setter {
	return func(m *models.Member, v string) string {
		v, ok := inputval.PlainText(v)
		if !ok {
			return inputval.MarkupReason
		}
		*dst(m) = v
		return ""
	}
}

func list(dst func(*models.Member) *[]string) setter {
	return func(m *models.Member, v string) string {
		var out []string
		for _, p := range strings.Split(v, ListSeparator) {
			p, ok := inputval.PlainText(p)
			if !ok {
				return inputval.MarkupReason
			}
			if p != "" {
				out = append(out, p)
			}
		}
		*dst(m) = out
		return ""
	}
}

func count(dst func(*models.Member) *int) setter {
	return func(m *models.Member, v string) string {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "must be a whole number >= 0"
		}
		*dst(m) = n
		return ""
	}
}

func optFloat(dst func(*models.Member) **float64, lo, hi float64) setter {
	return func(m *models.Member, v string) string {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "must be a number"
		}
		if f < lo || f > hi {
			return "must be between " + strconv.FormatFloat(lo, 'f', -1, 64) +
				" and " + strconv.FormatFloat(hi, 'f', -1, 64)
		}
		*dst(m) = &f
		return ""
	}
}

func optInt(dst func(*models.Member) **int) setter {
	return func(m *models.Member, v string) string {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "must be a whole number >= 0"
		}
		*dst(m) = &n
		return ""
	}
}

func email(m *models.Member, v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if !validate.SimpleEmailValid(v) {
		return "must be an email address"
	}
	m.Email = v
	return ""
}

func timestamp(dst func(*models.Member) *time.Time) setter {
	return func(m *models.Member, v string) string {
		t, ok := inputval.ParseTime(v)
		if !ok {
			return "must be a date (YYYY-MM-DD or RFC 3339)"
		}
		*dst(m) = t
		return ""
	}
}

const maxFloat = 1e12

// columns lists every importable column. Each accepts its short name and
// its document path.
var columns = []column{
	{[]string{"firstName"}, text(func(m *models.Member) *string { return &m.FirstName })},
	{[]string{"lastName"}, text(func(m *models.Member) *string { return &m.LastName })},
	{[]string{"email"}, email},
	{[]string{"phone"}, text(func(m *models.Member) *string { return &m.Phone })},
	{[]string{"company"}, text(func(m *models.Member) *string { return &m.Company })},
	{[]string{"department"}, text(func(m *models.Member) *string { return &m.Department })},
	{[]string{"role"}, text(func(m *models.Member) *string { return &m.Role })},
	{[]string{"jobTitle"}, text(func(m *models.Member) *string { return &m.JobTitle })},
	{[]string{"status"}, text(func(m *models.Member) *string { return &m.Status })},

	{[]string{"yearsInIndustry", "experience.yearsInIndustry"},
		optFloat(func(m *models.Member) **float64 { return &m.Experience.YearsInIndustry }, 0, 100)},
	{[]string{"expertise", "experience.expertise"},
		list(func(m *models.Member) *[]string { return &m.Experience.Expertise })},
	{[]string{"certifications", "experience.certifications"},
		list(func(m *models.Member) *[]string { return &m.Experience.Certifications })},

	{[]string{"language", "preferences.language"},
		text(func(m *models.Member) *string { return &m.Preferences.Language })},
	{[]string{"timezone", "preferences.timezone"},
		text(func(m *models.Member) *string { return &m.Preferences.Timezone })},
	{[]string{"communicationChannel", "preferences.communicationChannel"},
		text(func(m *models.Member) *string { return &m.Preferences.CommunicationChannel })},

	{[]string{"gender", "demographics.gender"},
		text(func(m *models.Member) *string { return &m.Demographics.Gender })},
	{[]string{"ageRange", "demographics.ageRange"},
		text(func(m *models.Member) *string { return &m.Demographics.AgeRange })},
	{[]string{"education", "demographics.education"},
		text(func(m *models.Member) *string { return &m.Demographics.Education })},

	{[]string{"currentPosition", "workHistory.currentPosition"},
		text(func(m *models.Member) *string { return &m.WorkHistory.CurrentPosition })},
	{[]string{"previousPositions", "workHistory.previousPositions"},
		list(func(m *models.Member) *[]string { return &m.WorkHistory.PreviousPositions })},
	{[]string{"industrySpecialization", "workHistory.industrySpecialization"},
		list(func(m *models.Member) *[]string { return &m.WorkHistory.IndustrySpecialization })},

	{[]string{"surveysCompleted", "participation.surveysCompleted"},
		count(func(m *models.Member) *int { return &m.Participation.SurveysCompleted })},
	{[]string{"surveysInvited", "participation.surveysInvited"},
		count(func(m *models.Member) *int { return &m.Participation.SurveysInvited })},
	{[]string{"responseRate", "participation.responseRate"},
		optFloat(func(m *models.Member) **float64 { return &m.Participation.ResponseRate }, 0, 100)},
	{[]string{"avgResponseTime", "participation.avgResponseTime"},
		optFloat(func(m *models.Member) **float64 { return &m.Participation.AvgResponseTime }, 0, maxFloat)},
	{[]string{"thoughtfulnessScore", "participation.responseQuality.thoughtfulnessScore"},
		optFloat(func(m *models.Member) **float64 { return &m.Participation.ResponseQuality.ThoughtfulnessScore }, 0, maxFloat)},
	{[]string{"loginFrequency", "participation.activityMetrics.loginFrequency"},
		optFloat(func(m *models.Member) **float64 { return &m.Participation.ActivityMetrics.LoginFrequency }, 0, maxFloat)},
	{[]string{"lastLoginStreak", "participation.activityMetrics.lastLoginStreak"},
		optInt(func(m *models.Member) **int { return &m.Participation.ActivityMetrics.LastLoginStreak })},
	{[]string{"platformFeedback", "participation.feedbackProvided.platformFeedback"},
		optInt(func(m *models.Member) **int { return &m.Participation.FeedbackProvided.PlatformFeedback })},
	{[]string{"surveyFeedback", "participation.feedbackProvided.surveyFeedback"},
		optInt(func(m *models.Member) **int { return &m.Participation.FeedbackProvided.SurveyFeedback })},
	{[]string{"featureRequests", "participation.feedbackProvided.featureRequests"},
		optInt(func(m *models.Member) **int { return &m.Participation.FeedbackProvided.FeatureRequests })},

	{[]string{"street", "address.street"},
		text(func(m *models.Member) *string { return &m.Address.Street })},
	{[]string{"city", "address.city"},
		text(func(m *models.Member) *string { return &m.Address.City })},
	{[]string{"state", "address.state"},
		text(func(m *models.Member) *string { return &m.Address.State })},
	{[]string{"country", "address.country"},
		text(func(m *models.Member) *string { return &m.Address.Country })},
	{[]string{"postalCode", "address.postalCode"},
		text(func(m *models.Member) *string { return &m.Address.PostalCode })},

	{[]string{"joinedAt"}, timestamp(func(m *models.Member) *time.Time { return &m.JoinedAt })},
	{[]string{"lastActive"}, timestamp(func(m *models.Member) *time.Time { return &m.LastActive })},
}

// MetaPrefix marks a column whose values go into metadata.<key>.
const MetaPrefix = "meta."

var columnIndex = func() map[string]setter {
	idx := make(map[string]setter)
	for _, c := range columns {
		for _, n := range c.names {
			idx[strings.ToLower(n)] = c.set
		}
	}
	return idx
}()

func lookupColumn(header string) (setter, bool) {
	s, ok := columnIndex[strings.ToLower(strings.TrimSpace(header))]
	return s, ok
}
