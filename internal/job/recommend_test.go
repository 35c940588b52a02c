package job

import (
	"testing"
	"time"

	"findr/backend/internal/model"
)

func recJob(mutate func(*model.Job)) model.Job {
	j := model.Job{
		Title:           "Backend Engineer",
		Skills:          []string{"Go", "PostgreSQL"},
		Location:        "Dubai",
		ExperienceLevel: "mid",
		CreatedAt:       time.Now().Add(-60 * 24 * time.Hour),
	}
	if mutate != nil {
		mutate(&j)
	}
	return j
}

func recProfile(mutate func(*model.Profile)) model.Profile {
	p := model.Profile{
		Skills:     []string{"go", "postgresql", "redis"},
		Experience: []model.ExperienceEntry{{YearsOfExperience: 4}},
	}
	p.Preferences.PreferredLocation = "Dubai"
	if mutate != nil {
		mutate(&p)
	}
	return p
}

func TestRecommendationScoreCapped(t *testing.T) {
	now := time.Now()
	job := recJob(func(j *model.Job) { j.CreatedAt = now.Add(-24 * time.Hour) })
	// 50 base + 40 skills + 30 location + 20 experience + 10 freshness
	// overflows the cap.
	if got := RecommendationScore(job, recProfile(nil), now); got != 100 {
		t.Errorf("RecommendationScore(perfect fit) = %d, want 100", got)
	}
}

func TestRecommendationScoreNoSignals(t *testing.T) {
	job := recJob(func(j *model.Job) {
		j.Skills = nil
		j.Location = ""
		j.ExperienceLevel = ""
	})
	p := recProfile(func(p *model.Profile) {
		p.Skills = nil
		p.Preferences.PreferredLocation = ""
	})
	// Base plus the near-fit experience bonus for an unspecified level.
	if got := RecommendationScore(job, p, time.Now()); got != 60 {
		t.Errorf("RecommendationScore(no signals) = %d, want 60", got)
	}
}

func TestRecommendationScoreSkillFraction(t *testing.T) {
	job := recJob(func(j *model.Job) {
		j.Skills = []string{"go", "python", "java"}
		j.Location = "remote"
		j.ExperienceLevel = "senior"
	})
	p := recProfile(func(p *model.Profile) {
		p.Skills = []string{"go"}
		p.Preferences.PreferredLocation = "dubai"
		p.Experience = []model.ExperienceEntry{{YearsOfExperience: 1}}
	})
	// 50 base + 40*1/3 skills, nothing else matches.
	if got := RecommendationScore(job, p, time.Now()); got != 63 {
		t.Errorf("RecommendationScore(one of three skills) = %d, want 63", got)
	}
}

func TestRecommendationScoreLocation(t *testing.T) {
	p := recProfile(func(p *model.Profile) {
		p.Skills = nil
		p.Experience = nil
	})
	base := recJob(func(j *model.Job) {
		j.Skills = nil
		j.ExperienceLevel = "senior" // no bonus at zero years
	})

	exact := base
	exact.Location = "dubai"
	partial := base
	partial.Location = "Dubai, UAE"
	miss := base
	miss.Location = "London"

	now := time.Now()
	if got := RecommendationScore(exact, p, now); got != 80 {
		t.Errorf("exact location = %d, want 80", got)
	}
	if got := RecommendationScore(partial, p, now); got != 65 {
		t.Errorf("partial location = %d, want 65", got)
	}
	if got := RecommendationScore(miss, p, now); got != 50 {
		t.Errorf("location miss = %d, want 50", got)
	}
}

func TestRecommendationScoreFreshness(t *testing.T) {
	p := recProfile(func(p *model.Profile) {
		p.Skills = nil
		p.Preferences.PreferredLocation = ""
		p.Experience = nil
	})
	now := time.Now()
	mk := func(age time.Duration) model.Job {
		return recJob(func(j *model.Job) {
			j.Skills = nil
			j.Location = ""
			j.ExperienceLevel = "senior"
			j.CreatedAt = now.Add(-age)
		})
	}
	if got := RecommendationScore(mk(2*24*time.Hour), p, now); got != 60 {
		t.Errorf("posted this week = %d, want 60", got)
	}
	if got := RecommendationScore(mk(20*24*time.Hour), p, now); got != 55 {
		t.Errorf("posted this month = %d, want 55", got)
	}
	if got := RecommendationScore(mk(90*24*time.Hour), p, now); got != 50 {
		t.Errorf("stale posting = %d, want 50", got)
	}
}

func TestRecommendationScoreExperienceFit(t *testing.T) {
	p := func(years int) model.Profile {
		return recProfile(func(p *model.Profile) {
			p.Skills = nil
			p.Preferences.PreferredLocation = ""
			p.Experience = []model.ExperienceEntry{{YearsOfExperience: years}}
		})
	}
	mk := func(level string) model.Job {
		return recJob(func(j *model.Job) {
			j.Skills = nil
			j.Location = ""
			j.ExperienceLevel = level
		})
	}
	now := time.Now()
	cases := []struct {
		level string
		years int
		want  int
	}{
		{"entry", 1, 70},
		{"entry", 5, 60},
		{"mid", 4, 70},
		{"mid", 1, 60},
		{"senior", 6, 70},
		{"senior", 3, 60},
		{"senior", 1, 50},
	}
	for _, c := range cases {
		if got := RecommendationScore(mk(c.level), p(c.years), now); got != c.want {
			t.Errorf("RecommendationScore(%s, %d years) = %d, want %d", c.level, c.years, got, c.want)
		}
	}
}
