// Package filters turns a validated member-listing query into a predicate
// tree and renders that tree as a Mongo filter.
//
// The set of recognized fields is closed; free-form metadata lookups go
// through ListQuery.Meta, which only ever produces exact matches under the
// "metadata." prefix.
package filters

import (
	"maps"
	"slices"
	"time"
)

// ListQuery is the typed parameter bag for member listing. Nil pointers and
// empty strings mean "not supplied" and contribute no predicate.
type ListQuery struct {
	// Case-insensitive substring fields
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Company         string
	Department      string
	Role            string
	JobTitle        string
	CurrentPosition string
	City            string
	State           string
	Country         string
	PostalCode      string
	ManufacturerID  string

	// Controlled-vocabulary fields (exact match)
	Gender               string
	Education            string
	AgeRange             string
	Language             string
	Timezone             string
	CommunicationChannel string
	Status               string

	// Set membership over array fields
	Expertise              []string
	Certifications         []string
	IndustrySpecialization []string

	// Numeric ranges
	YearsInIndustryMin  *float64
	YearsInIndustryMax  *float64
	SurveysCompletedMin *float64
	SurveysCompletedMax *float64
	ResponseRateMin     *float64
	ResponseRateMax     *float64

	// Date ranges
	JoinedAfter      *time.Time
	JoinedBefore     *time.Time
	LastActiveAfter  *time.Time
	LastActiveBefore *time.Time

	// Search is a keyword scanned across SearchFields.
	Search string

	// Meta holds exact-match lookups on metadata.<key>.
	Meta map[string]string

	// Paging and sorting; consumed by paging.Resolve, not by Compile.
	Page   string
	Limit  string
	SortBy string
	Order  string
}

// SearchFields are the fields a Search keyword is matched against.
var SearchFields = []string{"firstName", "lastName", "email", "company", "jobTitle"}

// Compile builds the predicate tree for q. All present conditions are ANDed.
func Compile(q ListQuery) Tree {
	var t Tree

	contains := func(field, v string) {
		if v != "" {
			t.Add(Cond{Field: field, Op: Contains, Text: v})
		}
	}
	exact := func(field, v string) {
		if v != "" {
			t.Add(Cond{Field: field, Op: Eq, Value: v})
		}
	}
	in := func(field string, vs []string) {
		if len(vs) > 0 {
			t.Add(Cond{Field: field, Op: In, Values: vs})
		}
	}
	numRange := func(field string, lo, hi *float64) {
		if lo == nil && hi == nil {
			return
		}
		c := Cond{Field: field, Op: Range}
		if lo != nil {
			c.Min = *lo
		}
		if hi != nil {
			c.Max = *hi
		}
		t.Add(c)
	}
	dateRange := func(field string, lo, hi *time.Time) {
		if lo == nil && hi == nil {
			return
		}
		c := Cond{Field: field, Op: Range}
		if lo != nil {
			c.Min = *lo
		}
		if hi != nil {
			c.Max = *hi
		}
		t.Add(c)
	}

	contains("firstName", q.FirstName)
	contains("lastName", q.LastName)
	contains("email", q.Email)
	contains("phone", q.Phone)
	contains("company", q.Company)
	contains("department", q.Department)
	contains("role", q.Role)
	contains("jobTitle", q.JobTitle)
	contains("workHistory.currentPosition", q.CurrentPosition)
	contains("address.city", q.City)
	contains("address.state", q.State)
	contains("address.country", q.Country)
	contains("address.postalCode", q.PostalCode)
	contains("manufacturerId", q.ManufacturerID)

	exact("demographics.gender", q.Gender)
	exact("demographics.education", q.Education)
	exact("demographics.ageRange", q.AgeRange)
	exact("preferences.language", q.Language)
	exact("preferences.timezone", q.Timezone)
	exact("preferences.communicationChannel", q.CommunicationChannel)
	exact("status", q.Status)

	in("experience.expertise", q.Expertise)
	in("experience.certifications", q.Certifications)
	in("workHistory.industrySpecialization", q.IndustrySpecialization)

	numRange("experience.yearsInIndustry", q.YearsInIndustryMin, q.YearsInIndustryMax)
	numRange("participation.surveysCompleted", q.SurveysCompletedMin, q.SurveysCompletedMax)
	numRange("participation.responseRate", q.ResponseRateMin, q.ResponseRateMax)

	dateRange("joinedAt", q.JoinedAfter, q.JoinedBefore)
	dateRange("lastActive", q.LastActiveAfter, q.LastActiveBefore)

	keys := slices.Sorted(maps.Keys(q.Meta))
	for _, k := range keys {
		if v := q.Meta[k]; k != "" && v != "" {
			t.Add(Cond{Field: "metadata." + k, Op: Eq, Value: v})
		}
	}

	if q.Search != "" {
		var kw Tree
		for _, f := range SearchFields {
			kw.Or = append(kw.Or, Tree{Conds: []Cond{{Field: f, Op: Contains, Text: q.Search}}})
		}
		t.And = append(t.And, kw)
	}

	return t
}
