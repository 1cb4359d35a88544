package csvutil

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/panelhub/internal/domain/models"
)

func TestParseMemberCSV_ValidRows(t *testing.T) {
	csv := `firstName,lastName,email,gender,yearsInIndustry,expertise,surveysCompleted,responseRate,joinedAt
Ana,Diaz,ana@example.com,female,6,hvac;plumbing,5,71.5,2024-03-01
Ben,Ode,BEN@example.com,male,,,0,,`

	result, err := ParseMemberCSV(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseMemberCSV() error = %v", err)
	}
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}

	ana := result.Rows[0]
	if ana.FirstName != "Ana" || ana.Email != "ana@example.com" || ana.Demographics.Gender != "female" {
		t.Errorf("row 0: %+v", ana)
	}
	if ana.Experience.YearsInIndustry == nil || *ana.Experience.YearsInIndustry != 6 {
		t.Errorf("yearsInIndustry: %v", ana.Experience.YearsInIndustry)
	}
	if len(ana.Experience.Expertise) != 2 || ana.Experience.Expertise[1] != "plumbing" {
		t.Errorf("expertise: %v", ana.Experience.Expertise)
	}
	if ana.Participation.SurveysCompleted != 5 {
		t.Errorf("surveysCompleted: %d", ana.Participation.SurveysCompleted)
	}
	if ana.Participation.ResponseRate == nil || *ana.Participation.ResponseRate != 71.5 {
		t.Errorf("responseRate: %v", ana.Participation.ResponseRate)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !ana.JoinedAt.Equal(want) {
		t.Errorf("joinedAt: got %v, want %v", ana.JoinedAt, want)
	}

	ben := result.Rows[1]
	if ben.Email != "ben@example.com" {
		t.Errorf("email not lower-cased: %q", ben.Email)
	}
	if ben.Experience.YearsInIndustry != nil || ben.Participation.ResponseRate != nil {
		t.Error("empty optional cells should stay nil")
	}
}

func TestParseMemberCSV_DocumentPathHeaders(t *testing.T) {
	csv := "Demographics.Gender,participation.activityMetrics.lastLoginStreak,meta.panel\nfemale,4,q3"

	result, err := ParseMemberCSV(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseMemberCSV() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(result.Rows))
	}
	m := result.Rows[0]
	if m.Demographics.Gender != "female" {
		t.Errorf("gender: %q", m.Demographics.Gender)
	}
	if s := m.Participation.ActivityMetrics.LastLoginStreak; s == nil || *s != 4 {
		t.Errorf("lastLoginStreak: %v", s)
	}
	if m.Metadata["panel"] != "q3" {
		t.Errorf("metadata: %v", m.Metadata)
	}
}

func TestParseMemberCSV_BOMHandling(t *testing.T) {
	csv := "\ufefffirstName,email\nJohn,john@example.com"

	result, err := ParseMemberCSV(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseMemberCSV() error = %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].FirstName != "John" {
		t.Errorf("unexpected rows: %+v", result.Rows)
	}
}

func TestParseMemberCSV_HeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"empty file", "", "no header"},
		{"unknown column", "firstName,favoriteColor\nA,blue", "favoriteColor: unknown column"},
		{"repeated column", "email,Email\na@x.com,b@x.com", "repeated column"},
		{"bad meta key", "meta.a-b\nx", "metadata key"},
		{"blank column name", "firstName,,email\nA,,a@x.com", "has no name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMemberCSV(strings.NewReader(tt.csv), DefaultParseOptions())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	if _, err := ParseMemberCSV(strings.NewReader(""), DefaultParseOptions()); !errors.Is(err, ErrNoHeader) {
		t.Errorf("empty file: got %v, want ErrNoHeader", err)
	}
}

func TestParseMemberCSV_RowErrors(t *testing.T) {
	csv := `firstName,email,responseRate,surveysCompleted,lastActive
Ana,ana@example.com,50,1,2024-01-01
Bad,not-an-email,150,-1,yesterday
Dup,ana@example.com,,,`

	result, err := ParseMemberCSV(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseMemberCSV() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Errorf("valid rows: got %d, want 1", len(result.Rows))
	}

	want := map[string]int{
		"email":            3,
		"responseRate":     3,
		"surveysCompleted": 3,
		"lastActive":       3,
	}
	got := map[string]int{}
	for _, e := range result.Errors {
		if e.Line == 3 {
			got[e.Column] = e.Line
		}
	}
	for col, line := range want {
		if got[col] != line {
			t.Errorf("expected an error for %s on line %d; errors: %v", col, line, result.Errors)
		}
	}

	var dup bool
	for _, e := range result.Errors {
		if e.Line == 4 && e.Column == "email" && strings.Contains(e.Reason, "duplicate of line 2") {
			dup = true
		}
	}
	if !dup {
		t.Errorf("expected duplicate email on line 4; errors: %v", result.Errors)
	}
}

func TestParseMemberCSV_SkipsBlankRows(t *testing.T) {
	csv := "firstName,email\n\nA,a@example.com\n , \nB,b@example.com\n"

	result, err := ParseMemberCSV(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseMemberCSV() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(result.Rows))
	}
}

func TestParseMemberCSV_TooManyFields(t *testing.T) {
	result, err := ParseMemberCSV(strings.NewReader("firstName\nA,extra"), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseMemberCSV() error = %v", err)
	}
	if !result.HasErrors() || result.Errors[0].Line != 2 {
		t.Errorf("expected a line 2 error, got %v", result.Errors)
	}
}

func TestParseMemberCSV_MaxRows(t *testing.T) {
	csv := "firstName\nA\nB\nC"
	_, err := ParseMemberCSV(strings.NewReader(csv), ParseOptions{MaxRows: 2})
	if err == nil || !strings.Contains(err.Error(), "more than 2 rows") {
		t.Errorf("expected row limit error, got %v", err)
	}
}

func TestParseMemberCSV_MaxErrors(t *testing.T) {
	var b strings.Builder
	b.WriteString("email\n")
	for i := 0; i < 10; i++ {
		b.WriteString("nope\n")
	}
	result, err := ParseMemberCSV(strings.NewReader(b.String()), ParseOptions{MaxErrors: 3})
	if err != nil {
		t.Fatalf("ParseMemberCSV() error = %v", err)
	}
	if len(result.Errors) != 3 || !result.Truncated {
		t.Errorf("got %d errors, truncated=%v; want 3, true", len(result.Errors), result.Truncated)
	}
}

func TestParseMemberCSV_RejectsMarkup(t *testing.T) {
	csv := "firstName,company,expertise,meta.panel\n" +
		"<b>Ana</b>,Acme,cad,q3\n" +
		"Ben,a<b Corp,cad,q3\n" +
		"Cy,Acme,cad;<i>cam</i>,q3\n" +
		"Di,Acme,cad,<script>x()</script>\n" +
		"Ed,R&D Labs,cad;cam,q3\n"
	result, err := ParseMemberCSV(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseMemberCSV() error = %v", err)
	}

	want := map[int]string{2: "firstName", 3: "company", 4: "expertise", 5: "meta.panel"}
	if len(result.Errors) != len(want) {
		t.Fatalf("errors: got %v, want one per line in %v", result.Errors, want)
	}
	for _, e := range result.Errors {
		if want[e.Line] != e.Column || e.Reason != "must not contain markup" {
			t.Errorf("unexpected error %v", e)
		}
	}

	if len(result.Rows) != 1 {
		t.Fatalf("valid rows: got %d, want 1", len(result.Rows))
	}
	if got := result.Rows[0].Company; got != "R&D Labs" {
		t.Errorf("company: got %q, want %q", got, "R&D Labs")
	}
}

func TestRowErrorString(t *testing.T) {
	if got := (RowError{Line: 3, Column: "email", Reason: "bad"}).String(); got != "line 3, email: bad" {
		t.Errorf("got %q", got)
	}
	if got := (RowError{Line: 2, Reason: "bad"}).String(); got != "line 2: bad" {
		t.Errorf("got %q", got)
	}
}

func TestEmailColumn(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ana@example.com", "ana@example.com", false},
		{"  Ana.Diaz@Example.COM ", "ana.diaz@example.com", false},
		{"not-an-email", "", true},
		{"ana@", "", true},
		{"@example.com", "", true},
	}
	for _, tt := range tests {
		var m models.Member
		reason := email(&m, tt.in)
		if (reason != "") != tt.wantErr {
			t.Errorf("email(%q) reason = %q, wantErr %v", tt.in, reason, tt.wantErr)
		}
		if m.Email != tt.want {
			t.Errorf("email(%q) stored %q, want %q", tt.in, m.Email, tt.want)
		}
	}
}
