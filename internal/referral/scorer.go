// Package referral implements referral applications: the job/candidate match
// scorer and the referrer-facing history view.
package referral

import (
	"math"
	"strings"

	"findr/backend/internal/application"
	"findr/backend/internal/model"
)

// Sub-score weights. They sum to 100, so the weighted total is already on a
// 0–100 scale before the status adjustment.
const (
	weightSkills     = 30
	weightExperience = 25
	weightLocation   = 15
	weightSalary     = 15
	weightEducation  = 15
)

// MatchScore computes the 0–100 compatibility score between a job and a
// referred candidate. It is stateless and deterministic; a missing input
// never zeroes a sub-score, it falls back to a moderate default.
func MatchScore(job model.Job, app model.Application, applicant model.Profile) int {
	total := skillsScore(job.Skills, applicant.Skills) +
		experienceScore(job.ExperienceLevel, applicant.Experience) +
		locationScore(job.Location, applicant.Location) +
		salaryScore(job.Salary, app.ExpectedSalary) +
		educationScore(job.Requirements, applicant.Education)

	// Current status nudges the score without dominating it.
	switch application.Status(app.Status) {
	case application.StatusHired:
		total = math.Min(total+5, 98)
	case application.StatusInterviewScheduled:
		total = math.Min(total+3, 95)
	case application.StatusShortlisted:
		total = math.Min(total+2, 92)
	case application.StatusRejected:
		total = math.Max(total-10, 25)
	}

	return int(math.Round(total))
}

// skillsScore scales the fraction of job skills the candidate covers to the
// skills weight. Matching is case-insensitive substring containment in
// either direction, so "react" matches "reactjs".
func skillsScore(jobSkills, applicantSkills []string) float64 {
	if len(jobSkills) == 0 || len(applicantSkills) == 0 {
		return 15
	}
	matched := 0
	for _, js := range jobSkills {
		j := strings.ToLower(js)
		for _, as := range applicantSkills {
			a := strings.ToLower(as)
			if strings.Contains(a, j) || strings.Contains(j, a) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(jobSkills)) * weightSkills
}

// experienceScore bands the candidate's experience-entry count against the
// job's stated level.
func experienceScore(jobLevel string, experience []model.ExperienceEntry) float64 {
	if jobLevel == "" || len(experience) == 0 {
		return 18
	}
	level := strings.ToLower(jobLevel)
	years := len(experience)

	switch {
	case strings.Contains(level, "entry") || strings.Contains(level, "junior"):
		if years <= 2 {
			return 25
		}
		if years <= 5 {
			return 20
		}
		return 15
	case strings.Contains(level, "mid") || strings.Contains(level, "intermediate"):
		if years >= 2 && years <= 7 {
			return 25
		}
		return 18
	case strings.Contains(level, "senior") || strings.Contains(level, "lead"):
		if years >= 5 {
			return 25
		}
		if years >= 3 {
			return 20
		}
		return 15
	}
	return 18
}

func locationScore(jobLocation, applicantLocation string) float64 {
	if jobLocation == "" || applicantLocation == "" {
		return 10
	}
	j := strings.ToLower(jobLocation)
	a := strings.ToLower(applicantLocation)
	if strings.Contains(j, a) || strings.Contains(a, j) {
		return weightLocation
	}
	return 8
}

// salaryScore bands the relative gap between the job's salary midpoint and
// the expected-salary midpoint.
func salaryScore(jobSalary, expected model.SalaryRange) float64 {
	if jobSalary.IsZero() || expected.IsZero() {
		return 10
	}
	jobMid := jobSalary.Midpoint()
	if jobMid == 0 {
		return 10
	}
	diff := math.Abs(jobMid-expected.Midpoint()) / jobMid
	switch {
	case diff <= 0.1:
		return weightSalary
	case diff <= 0.2:
		return 12
	case diff <= 0.3:
		return 8
	}
	return 5
}

var degreeKeywords = []string{"degree", "bachelor", "master", "phd", "diploma"}

// educationScore checks the job's requirements text for a degree-related
// keyword and, when present, scores the candidate's highest degree by tier.
func educationScore(requirements []string, education []model.EducationEntry) float64 {
	if len(requirements) == 0 {
		return 10
	}
	reqs := strings.ToLower(strings.Join(requirements, " "))
	required := false
	for _, kw := range degreeKeywords {
		if strings.Contains(reqs, kw) {
			required = true
			break
		}
	}
	if !required {
		return 12
	}
	if len(education) == 0 {
		return 6
	}

	degree := strings.ToLower(education[0].HighestDegree)
	switch {
	case strings.Contains(degree, "phd") || strings.Contains(degree, "doctorate"):
		return weightEducation
	case strings.Contains(degree, "master"):
		return 14
	case strings.Contains(degree, "bachelor"):
		return 12
	case strings.Contains(degree, "diploma"):
		return 10
	}
	return 8
}
