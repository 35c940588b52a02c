package job

import (
	"strings"
	"time"

	"findr/backend/internal/model"
)

// Recommendation scoring weights. Every active job starts at the base and
// earns bonuses for skill overlap, location, experience fit and freshness,
// capped at 100.
const (
	recBaseScore       = 50
	recSkillsBonus     = 40
	recLocationExact   = 30
	recLocationPartial = 15
	recExperienceFit   = 20
	recExperienceNear  = 10
	recFreshWeek       = 10
	recFreshMonth      = 5
	recMaxScore        = 100
)

func skillMatches(jobSkill string, skills []string) bool {
	js := strings.ToLower(strings.TrimSpace(jobSkill))
	for _, s := range skills {
		ps := strings.ToLower(strings.TrimSpace(s))
		if ps == "" || js == "" {
			continue
		}
		if strings.Contains(ps, js) || strings.Contains(js, ps) {
			return true
		}
	}
	return false
}

// RecommendationScore rates how well job fits the profile at time now.
func RecommendationScore(job model.Job, p model.Profile, now time.Time) int {
	score := recBaseScore

	if len(job.Skills) > 0 && len(p.Skills) > 0 {
		matched := 0
		for _, js := range job.Skills {
			if skillMatches(js, p.Skills) {
				matched++
			}
		}
		score += recSkillsBonus * matched / len(job.Skills)
	}

	prefLoc := p.Preferences.PreferredLocation
	if prefLoc == "" {
		prefLoc = p.Location
	}
	jobLoc := strings.ToLower(strings.TrimSpace(job.Location))
	wantLoc := strings.ToLower(strings.TrimSpace(prefLoc))
	switch {
	case jobLoc == "" || wantLoc == "":
	case jobLoc == wantLoc:
		score += recLocationExact
	case strings.Contains(jobLoc, wantLoc) || strings.Contains(wantLoc, jobLoc):
		score += recLocationPartial
	}

	years := 0
	if len(p.Experience) > 0 {
		years = p.Experience[0].YearsOfExperience
	}
	switch strings.ToLower(job.ExperienceLevel) {
	case "entry":
		if years <= 2 {
			score += recExperienceFit
		} else {
			score += recExperienceNear
		}
	case "mid":
		if years >= 2 && years <= 7 {
			score += recExperienceFit
		} else {
			score += recExperienceNear
		}
	case "senior":
		if years >= 5 {
			score += recExperienceFit
		} else if years >= 3 {
			score += recExperienceNear
		}
	default:
		score += recExperienceNear
	}

	switch age := now.Sub(job.CreatedAt); {
	case age <= 7*24*time.Hour:
		score += recFreshWeek
	case age <= 30*24*time.Hour:
		score += recFreshMonth
	}

	if score > recMaxScore {
		score = recMaxScore
	}
	return score
}
