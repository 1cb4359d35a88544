// internal/app/system/inputval/listquery.go
package inputval

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/panelhub/internal/app/system/filters"
	"github.com/dalemusser/panelhub/internal/app/system/paging"
	"github.com/dalemusser/waffle/pantry/query"
)

// MetaPrefix marks free-form metadata lookups, e.g. ?meta.panel=q3.
const MetaPrefix = "meta."

// listKeys is the closed set of recognized listing parameters.
var listKeys = map[string]bool{
	"firstName": true, "lastName": true, "email": true, "phone": true,
	"company": true, "department": true, "role": true, "jobTitle": true,
	"currentPosition": true, "city": true, "state": true, "country": true,
	"postalCode": true, "manufacturerId": true,

	"gender": true, "education": true, "ageRange": true, "language": true,
	"timezone": true, "communicationChannel": true, "status": true,

	"expertise": true, "certifications": true, "industrySpecialization": true,

	"yearsInIndustryMin": true, "yearsInIndustryMax": true,
	"surveysCompletedMin": true, "surveysCompletedMax": true,
	"responseRateMin": true, "responseRateMax": true,

	"joinedAfter": true, "joinedBefore": true,
	"lastActiveAfter": true, "lastActiveBefore": true,

	"search": true, "page": true, "limit": true, "sortBy": true, "order": true,
}

// ParseListQuery validates the listing query string of r.
//
// Unknown parameters are rejected, numeric and date parameters must parse,
// page must be >= 1, limit must be within [1, paging.MaxLimit],
// responseRate bounds within [0, 100] and surveysCompleted bounds >= 0.
func ParseListQuery(r *http.Request) (filters.ListQuery, Errors) {
	errs := Errors{}
	var q filters.ListQuery

	for key := range r.URL.Query() {
		if listKeys[key] {
			continue
		}
		if k, ok := strings.CutPrefix(key, MetaPrefix); ok {
			if !IsMetaKey(k) {
				errs.Add(key, "metadata key must contain only letters, digits and underscores")
			}
			continue
		}
		errs.Add(key, "property "+key+" should not exist")
	}

	text := func(key string) string {
		v, ok := PlainText(query.Get(r, key))
		if !ok {
			errs.Add(key, key+" "+MarkupReason)
			return ""
		}
		return v
	}

	q.FirstName = text("firstName")
	q.LastName = text("lastName")
	q.Email = text("email")
	q.Phone = text("phone")
	q.Company = text("company")
	q.Department = text("department")
	q.Role = text("role")
	q.JobTitle = text("jobTitle")
	q.CurrentPosition = text("currentPosition")
	q.City = text("city")
	q.State = text("state")
	q.Country = text("country")
	q.PostalCode = text("postalCode")
	q.ManufacturerID = text("manufacturerId")

	q.Gender = text("gender")
	q.Education = text("education")
	q.AgeRange = text("ageRange")
	q.Language = text("language")
	q.Timezone = text("timezone")
	q.CommunicationChannel = text("communicationChannel")
	q.Status = text("status")

	q.Expertise = splitList(text("expertise"))
	q.Certifications = splitList(text("certifications"))
	q.IndustrySpecialization = splitList(text("industrySpecialization"))

	q.YearsInIndustryMin = number(r, errs, "yearsInIndustryMin", nil, nil)
	q.YearsInIndustryMax = number(r, errs, "yearsInIndustryMax", nil, nil)
	zero, hundred := 0.0, 100.0
	q.SurveysCompletedMin = number(r, errs, "surveysCompletedMin", &zero, nil)
	q.SurveysCompletedMax = number(r, errs, "surveysCompletedMax", &zero, nil)
	q.ResponseRateMin = number(r, errs, "responseRateMin", &zero, &hundred)
	q.ResponseRateMax = number(r, errs, "responseRateMax", &zero, &hundred)

	q.JoinedAfter = date(r, errs, "joinedAfter")
	q.JoinedBefore = date(r, errs, "joinedBefore")
	q.LastActiveAfter = date(r, errs, "lastActiveAfter")
	q.LastActiveBefore = date(r, errs, "lastActiveBefore")

	q.Search = text("search")

	for key, vals := range r.URL.Query() {
		k, ok := strings.CutPrefix(key, MetaPrefix)
		if !ok || !IsMetaKey(k) || len(vals) == 0 {
			continue
		}
		v, ok := PlainText(vals[0])
		if !ok {
			errs.Add(key, key+" "+MarkupReason)
			continue
		}
		if v != "" {
			if q.Meta == nil {
				q.Meta = map[string]string{}
			}
			q.Meta[k] = v
		}
	}

	if s := query.Get(r, "page"); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs.Add("page", "page must be a number conforming to the specified constraints")
		case n < 1:
			errs.Add("page", "page must not be less than 1")
		}
		q.Page = s
	}
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs.Add("limit", "limit must be a number conforming to the specified constraints")
		case n < 1:
			errs.Add("limit", "limit must not be less than 1")
		case n > paging.MaxLimit:
			errs.Add("limit", "limit must not be greater than "+strconv.Itoa(paging.MaxLimit))
		}
		q.Limit = s
	}
	if s := query.Get(r, "sortBy"); s != "" {
		if !IsFieldPath(s) {
			errs.Add("sortBy", "sortBy must be a field path")
		}
		q.SortBy = s
	}
	if s := query.Get(r, "order"); s != "" {
		if s != "asc" && s != "desc" {
			errs.Add("order", "order must be one of the following values: asc, desc")
		}
		q.Order = s
	}

	return q, errs
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func number(r *http.Request, errs Errors, key string, lo, hi *float64) *float64 {
	s := query.Get(r, key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		errs.Add(key, key+" must be a number conforming to the specified constraints")
		return nil
	}
	if lo != nil && v < *lo {
		errs.Add(key, key+" must not be less than "+strconv.FormatFloat(*lo, 'f', -1, 64))
	}
	if hi != nil && v > *hi {
		errs.Add(key, key+" must not be greater than "+strconv.FormatFloat(*hi, 'f', -1, 64))
	}
	return &v
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseTime parses an ISO-8601 timestamp or plain date and returns it in UTC.
// Values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func date(r *http.Request, errs Errors, key string) *time.Time {
	s := query.Get(r, key)
	if s == "" {
		return nil
	}
	t, ok := ParseTime(s)
	if !ok {
		errs.Add(key, key+" must be a Date instance")
		return nil
	}
	return &t
}
