package inputval

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"   ", "", true},
		{" Acme ", "Acme", true},
		{"R&D", "R&D", true},
		{"O'Brien", "O'Brien", true},
		{"5 > 3", "5 > 3", true},
		{"<b>Acme</b>", "<b>Acme</b>", false},
		{"<script>alert(1)</script>Tech", "<script>alert(1)</script>Tech", false},
		{"a<b", "a<b", false},
	}
	for _, tt := range tests {
		got, ok := PlainText(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PlainText(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsFieldPath(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"firstName", true},
		{"participation.surveysCompleted", true},
		{"participation.activityMetrics.lastLoginStreak", true},
		{"", false},
		{"$where", false},
		{"a..b", false},
		{".a", false},
		{"a.", false},
		{"a.$gt", false},
	}
	for _, tt := range tests {
		if got := IsFieldPath(tt.in); got != tt.want {
			t.Errorf("IsFieldPath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseListQuery_Valid(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/users?gender=female&company=Tech&yearsInIndustryMin=10"+
		"&responseRateMax=80&joinedAfter=2023-01-01&expertise=ev,%20battery&meta.panel=q3"+
		"&page=2&limit=25&sortBy=participation.surveysCompleted&order=desc&search=engineer", nil)

	q, errs := ParseListQuery(r)
	if errs.Any() {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if q.Gender != "female" || q.Company != "Tech" || q.Search != "engineer" {
		t.Errorf("text fields not parsed: %+v", q)
	}
	if q.YearsInIndustryMin == nil || *q.YearsInIndustryMin != 10 {
		t.Errorf("YearsInIndustryMin = %v, want 10", q.YearsInIndustryMin)
	}
	if q.ResponseRateMax == nil || *q.ResponseRateMax != 80 {
		t.Errorf("ResponseRateMax = %v, want 80", q.ResponseRateMax)
	}
	wantJoined := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if q.JoinedAfter == nil || !q.JoinedAfter.Equal(wantJoined) {
		t.Errorf("JoinedAfter = %v, want %v", q.JoinedAfter, wantJoined)
	}
	if diff := cmp.Diff([]string{"ev", "battery"}, q.Expertise); diff != "" {
		t.Errorf("Expertise mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"panel": "q3"}, q.Meta); diff != "" {
		t.Errorf("Meta mismatch (-want +got):\n%s", diff)
	}
	if q.Page != "2" || q.Limit != "25" || q.SortBy != "participation.surveysCompleted" || q.Order != "desc" {
		t.Errorf("paging fields = %q %q %q %q", q.Page, q.Limit, q.SortBy, q.Order)
	}
}

func TestParseListQuery_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"unknown key", "foo=bar", "foo"},
		{"limit too large", "limit=101", "limit"},
		{"limit zero", "limit=0", "limit"},
		{"page zero", "page=0", "page"},
		{"page not numeric", "page=abc", "page"},
		{"bad order", "order=sideways", "order"},
		{"operator sort", "sortBy=$where", "sortBy"},
		{"response rate above 100", "responseRateMin=120", "responseRateMin"},
		{"negative surveys", "surveysCompletedMax=-1", "surveysCompletedMax"},
		{"bad number", "yearsInIndustryMin=ten", "yearsInIndustryMin"},
		{"bad date", "lastActiveBefore=yesterday", "lastActiveBefore"},
		{"bad meta key", "meta.a$b=1", "meta.a$b"},
		{"stray angle bracket", "company=a%3Cb", "company"},
		{"markup in exact match", "gender=%3Cb%3Efemale%3C/b%3E", "gender"},
		{"markup in search", "search=%3Cscript%3Ex%3C/script%3E", "search"},
		{"markup in meta value", "meta.panel=%3Ci%3Eq3", "meta.panel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/users?"+tt.query, nil)
			_, errs := ParseListQuery(r)
			if len(errs[tt.field]) == 0 {
				t.Errorf("expected error on %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestParseListQuery_CollectsAllErrors(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/users?limit=500&order=up&bogus=1", nil)
	_, errs := ParseListQuery(r)
	if diff := cmp.Diff([]string{"bogus", "limit", "order"}, errs.Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(errs.Error(), "validation failed: ") {
		t.Errorf("unexpected Error(): %q", errs.Error())
	}
}

func TestParseBulkAssign(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantIDs    []string
		wantManu   string
		wantFields []string
	}{
		{
			name:     "object refs",
			body:     `{"users":[{"_id":"a"},{"_id":"b"}],"manufacturerId":"manu123"}`,
			wantIDs:  []string{"a", "b"},
			wantManu: "manu123",
		},
		{
			name:     "string refs",
			body:     `{"users":["a","b"],"manufacturerId":" manu123 "}`,
			wantIDs:  []string{"a", "b"},
			wantManu: "manu123",
		},
		{
			name:       "empty users and missing manufacturer",
			body:       `{"users":[]}`,
			wantFields: []string{"manufacturerId", "users"},
		},
		{
			name:       "missing users",
			body:       `{"manufacturerId":"m"}`,
			wantFields: []string{"users"},
		},
		{
			name:       "user without id",
			body:       `{"users":[{}],"manufacturerId":"m"}`,
			wantFields: []string{"users.0._id"},
		},
		{
			name:       "unknown property",
			body:       `{"users":["a"],"manufacturerId":"m","extra":1}`,
			wantFields: []string{"extra"},
		},
		{
			name:       "not json",
			body:       `users=a`,
			wantFields: []string{"body"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := ParseBulkAssign(strings.NewReader(tt.body))
			if len(tt.wantFields) > 0 {
				if diff := cmp.Diff(tt.wantFields, errs.Fields()); diff != "" {
					t.Errorf("error fields mismatch (-want +got):\n%s", diff)
				}
				return
			}
			if errs.Any() {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if diff := cmp.Diff(tt.wantIDs, got.UserIDs); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
			if got.ManufacturerID != tt.wantManu {
				t.Errorf("ManufacturerID = %q, want %q", got.ManufacturerID, tt.wantManu)
			}
		})
	}
}
