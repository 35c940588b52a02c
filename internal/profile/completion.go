// Package profile implements the profile-completion calculator and the
// job-application eligibility gate, plus the profile HTTP surface.
//
// Completion counts 24 tracked fields:
//
//	personal   9  — full name, email, phone, location, date of birth,
//	               nationality, professional summary, Emirates ID, passport
//	experience 4  — first entry only: current role, company, years, industry
//	education  4  — first entry only: degree, institution, year, grade/CGPA
//	documents  4  — skills, preferred job types, certifications, resume
//	social     3  — LinkedIn, Instagram, Twitter/X
package profile

import (
	"math"

	"findr/backend/internal/model"
)

// TotalFields is the completion denominator.
const TotalFields = 24

// Eligibility thresholds for applying to jobs.
const minApplyPercentage = 80

// CompletionBasePoints and CompletionPointsPerPct derive the completeProfile
// reward bucket from the percentage: 50 + 2 per percentage point, so a 100%
// profile is worth 250 points.
const (
	CompletionBasePoints   = 50
	CompletionPointsPerPct = 2
)

// Completion is the derived state of a profile.
type Completion struct {
	Completed     int      `json:"completed"`
	Total         int      `json:"total"`
	Percentage    int      `json:"percentage"`
	MissingFields []string `json:"missingFields"`
}

// Evaluate counts the completed fields of p. A field is complete iff its
// stored value is non-empty; experience and education look at the first
// entry only.
func Evaluate(p model.Profile) Completion {
	c := Completion{Total: TotalFields}

	count := func(done bool, name string) {
		if done {
			c.Completed++
		} else {
			c.MissingFields = append(c.MissingFields, name)
		}
	}

	// Personal (9)
	count(p.FullName != "", "Full Name")
	count(p.Email != "", "Email")
	count(p.PhoneNumber != "", "Phone Number")
	count(p.Location != "", "Location")
	count(p.DateOfBirth != nil, "Date of Birth")
	count(p.Nationality != "", "Nationality")
	count(p.ProfessionalSummary != "", "Professional Summary")
	count(p.EmiratesID != "", "Emirates ID")
	count(p.PassportNumber != "", "Passport Number")

	// Experience (4, first entry only)
	var exp model.ExperienceEntry
	if len(p.Experience) > 0 {
		exp = p.Experience[0]
	}
	count(exp.CurrentRole != "", "Current Role")
	count(exp.Company != "", "Company")
	count(exp.YearsOfExperience > 0, "Years of Experience")
	count(exp.Industry != "", "Industry")

	// Education (4, first entry only)
	var edu model.EducationEntry
	if len(p.Education) > 0 {
		edu = p.Education[0]
	}
	count(edu.HighestDegree != "", "Highest Degree")
	count(edu.Institution != "", "Institution")
	count(edu.YearOfGraduation > 0, "Year of Graduation")
	count(edu.GradeCGPA != "", "Grade/CGPA")

	// Skills, preferences, certifications, resume (4)
	count(len(p.Skills) > 0, "Skills")
	count(len(p.Preferences.PreferredJobType) > 0, "Job Preferences")
	count(len(p.Certifications) > 0, "Certifications")
	count(HasResume(p), "Resume (Required for job applications)")

	// Social links (3)
	count(p.Social.LinkedIn != "", "LinkedIn")
	count(p.Social.Instagram != "", "Instagram")
	count(p.Social.TwitterX != "", "Twitter/X")

	c.Percentage = int(math.Round(float64(c.Completed) / float64(c.Total) * 100))
	return c
}

// HasResume reports whether any resume document is on file.
func HasResume(p model.Profile) bool {
	return p.ResumeDocument != "" || len(p.Preferences.ResumeAndDocs) > 0
}

// CompletionPoints converts a completion percentage into the completeProfile
// reward bucket value.
func CompletionPoints(percentage int) int {
	return CompletionBasePoints + percentage*CompletionPointsPerPct
}

// CanApply reports whether the profile clears the job-application gate:
// at least 80% complete with a resume on file. The two conditions fail
// independently.
func CanApply(p model.Profile) bool {
	return Evaluate(p).Percentage >= minApplyPercentage && HasResume(p)
}
