package referral_test

import (
	"testing"

	"findr/backend/internal/model"
	"findr/backend/internal/referral"
)

func baseJob() model.Job {
	return model.Job{
		Title:           "Frontend Engineer",
		Skills:          []string{"react", "node"},
		ExperienceLevel: "Mid-level",
		Location:        "Dubai",
		Salary:          model.SalaryRange{Min: 10000, Max: 14000},
		Requirements:    []string{"Bachelor degree in CS or related field"},
	}
}

func baseApplicant() model.Profile {
	return model.Profile{
		Skills:   []string{"reactjs", "nodejs"},
		Location: "Dubai",
		Experience: []model.ExperienceEntry{
			{CurrentRole: "Engineer"}, {CurrentRole: "Junior Engineer"}, {CurrentRole: "Intern"},
		},
		Education: []model.EducationEntry{{HighestDegree: "Bachelor of Science"}},
	}
}

func baseApp(status string) model.Application {
	return model.Application{
		Status:         status,
		ExpectedSalary: model.SalaryRange{Min: 10000, Max: 14000},
	}
}

// Perfect fit: 30 + 25 + 15 + 15 + 12 (bachelor) = 97, pending unchanged.
func TestMatchScore_StrongFit(t *testing.T) {
	got := referral.MatchScore(baseJob(), baseApp("pending"), baseApplicant())
	if got != 97 {
		t.Errorf("MatchScore = %d, want 97", got)
	}
}

// Job skills ["react","node"], applicant ["reactjs","python"]: one substring
// match, skills sub-score (1/2)*30 = 15.
func TestMatchScore_PartialSkillsMatch(t *testing.T) {
	applicant := baseApplicant()
	applicant.Skills = []string{"reactjs", "python"}

	full := referral.MatchScore(baseJob(), baseApp("pending"), baseApplicant())
	partial := referral.MatchScore(baseJob(), baseApp("pending"), applicant)
	if full-partial != 15 {
		t.Errorf("losing one of two job skills should cost 15 points, cost %d", full-partial)
	}
}

func TestMatchScore_Bounds(t *testing.T) {
	cases := []struct {
		name      string
		job       model.Job
		app       model.Application
		applicant model.Profile
	}{
		{"empty", model.Job{}, model.Application{Status: "pending"}, model.Profile{}},
		{"strongHired", baseJob(), baseApp("hired"), baseApplicant()},
		{"emptyRejected", model.Job{}, model.Application{Status: "rejected"}, model.Profile{}},
		{"strongFit", baseJob(), baseApp("pending"), baseApplicant()},
	}
	for _, c := range cases {
		got := referral.MatchScore(c.job, c.app, c.applicant)
		if got < 0 || got > 100 {
			t.Errorf("MatchScore(%s) = %d, want within [0,100]", c.name, got)
		}
	}
}

// Missing inputs fall back to moderate defaults: 15+18+10+10+10 = 63.
func TestMatchScore_AllDefaults(t *testing.T) {
	got := referral.MatchScore(model.Job{}, model.Application{Status: "pending"}, model.Profile{})
	if got != 63 {
		t.Errorf("MatchScore(empty inputs) = %d, want 63", got)
	}
}

func TestMatchScore_StatusAdjustments(t *testing.T) {
	pending := referral.MatchScore(baseJob(), baseApp("pending"), baseApplicant())

	cases := []struct {
		status string
		want   int
	}{
		{"hired", 98},        // 97+5 capped at 98
		{"interview_scheduled", 95}, // 97+3 capped at 95
		{"shortlisted", 92},  // 97+2 capped at 92
		{"rejected", 87},     // 97-10, floor 25 not reached
	}
	for _, c := range cases {
		got := referral.MatchScore(baseJob(), baseApp(c.status), baseApplicant())
		if got != c.want {
			t.Errorf("MatchScore(status=%s) = %d, want %d", c.status, got, c.want)
		}
	}

	hired := referral.MatchScore(baseJob(), baseApp("hired"), baseApplicant())
	if hired < pending-5 {
		t.Errorf("hired score %d should not trail pending score %d beyond the cap", hired, pending)
	}
}

// A weak rejected candidate must not drop below the 25 floor.
func TestMatchScore_RejectedFloor(t *testing.T) {
	job := baseJob()
	job.Requirements = []string{"PhD required"}
	applicant := model.Profile{
		Skills:     []string{"cobol"},
		Location:   "Abu Dhabi",
		Experience: []model.ExperienceEntry{{}},
	}
	app := model.Application{Status: "rejected", ExpectedSalary: model.SalaryRange{Min: 40000, Max: 50000}}

	got := referral.MatchScore(job, app, applicant)
	if got < 25 {
		t.Errorf("MatchScore = %d, want ≥ 25 (rejection floor)", got)
	}
}

func TestMatchScore_SalaryBands(t *testing.T) {
	// Job midpoint 12000. Expected midpoints picked per band.
	cases := []struct {
		name     string
		expected model.SalaryRange
		want     int // full-score delta against the ≤10% band
	}{
		{"within10", model.SalaryRange{Min: 11000, Max: 14000}, 0},  // mid 12500, diff ~4%
		{"within20", model.SalaryRange{Min: 13000, Max: 15000}, 3},  // mid 14000, diff ~16.7%
		{"within30", model.SalaryRange{Min: 14000, Max: 16000}, 7},  // mid 15000, diff 25%
		{"beyond30", model.SalaryRange{Min: 18000, Max: 22000}, 10}, // mid 20000, diff ~66.7%
	}
	base := referral.MatchScore(baseJob(), baseApp("pending"), baseApplicant())
	for _, c := range cases {
		app := baseApp("pending")
		app.ExpectedSalary = c.expected
		got := referral.MatchScore(baseJob(), app, baseApplicant())
		if base-got != c.want {
			t.Errorf("%s: score delta = %d, want %d", c.name, base-got, c.want)
		}
	}
}

func TestMatchScore_EducationTiers(t *testing.T) {
	cases := []struct {
		degree string
		want   int
	}{
		{"PhD in Computer Science", 100}, // 30+25+15+15+15 = 100
		{"Master of Science", 99},
		{"Bachelor of Science", 97},
		{"Diploma in IT", 95},
		{"High School", 93},
	}
	for _, c := range cases {
		applicant := baseApplicant()
		applicant.Education = []model.EducationEntry{{HighestDegree: c.degree}}
		got := referral.MatchScore(baseJob(), baseApp("pending"), applicant)
		if got != c.want {
			t.Errorf("degree %q: MatchScore = %d, want %d", c.degree, got, c.want)
		}
	}
}

func TestMatchScore_NoDegreeRequirement(t *testing.T) {
	job := baseJob()
	job.Requirements = []string{"5+ years building web applications"}
	// Without a degree keyword the sub-score is a flat 12 even when the
	// applicant has no education at all.
	noEdu := baseApplicant()
	noEdu.Education = nil

	got := referral.MatchScore(job, baseApp("pending"), noEdu)
	want := 30 + 25 + 15 + 15 + 12
	if got != want {
		t.Errorf("MatchScore(no degree requirement) = %d, want %d", got, want)
	}
}

func TestMatchScore_DegreeRequiredButMissing(t *testing.T) {
	applicant := baseApplicant()
	applicant.Education = nil
	got := referral.MatchScore(baseJob(), baseApp("pending"), applicant)
	want := 30 + 25 + 15 + 15 + 6
	if got != want {
		t.Errorf("MatchScore(degree required, none on file) = %d, want %d", got, want)
	}
}
