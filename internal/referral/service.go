package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"findr/backend/internal/model"
	"findr/backend/internal/profile"
)

// Service reports a jobseeker's referral history with live match scores.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Record is one referred application, scored against the job as it stands
// now. Scores are computed on read and never stored.
type Record struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	JobTitle      string `json:"jobTitle"`
	CompanyName   string `json:"companyName"`
	CandidateID   string `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	Status        string `json:"status"`
	MatchScore    int    `json:"matchScore"`
	AppliedDate   string `json:"appliedDate"`
}

// HistoryStats summarize the referrer's referrals by outcome.
type HistoryStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Shortlisted int `json:"shortlisted"`
	Interviews  int `json:"interviews"`
	Hired       int `json:"hired"`
	Rejected    int `json:"rejected"`
}

func (s *Service) loadJob(ctx context.Context, jobID string) (model.Job, error) {
	var j model.Job
	err := s.pool.QueryRow(ctx, `
		SELECT id, employer_id, title, company_name, description, requirements,
			skills, location, job_type, experience_level, salary_min, salary_max,
			status, views, created_at, updated_at
		FROM jobs WHERE id = $1`, jobID).
		Scan(&j.ID, &j.EmployerID, &j.Title, &j.CompanyName, &j.Description,
			&j.Requirements, &j.Skills, &j.Location, &j.JobType, &j.ExperienceLevel,
			&j.Salary.Min, &j.Salary.Max, &j.Status, &j.Views, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

// History lists the applications referred by referrerID, newest first, each
// scored against the current job posting and candidate profile.
func (s *Service) History(ctx context.Context, referrerID string) ([]Record, HistoryStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.job_id, a.applicant_id, a.status,
			a.expected_salary_min, a.expected_salary_max, a.applied_date,
			u.name, u.full_name
		FROM applications a
		JOIN users u ON u.id = a.applicant_id
		WHERE a.referred_by = $1
		ORDER BY a.applied_date DESC`, referrerID)
	if err != nil {
		return nil, HistoryStats{}, fmt.Errorf("listing referrals: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	var stats HistoryStats
	for rows.Next() {
		var (
			rec      Record
			app      model.Application
			name     string
			fullName string
		)
		if err := rows.Scan(&rec.ApplicationID, &rec.JobID, &rec.CandidateID, &rec.Status,
			&app.ExpectedSalary.Min, &app.ExpectedSalary.Max, &app.AppliedDate,
			&name, &fullName); err != nil {
			return nil, HistoryStats{}, err
		}
		rec.CandidateName = fullName
		if rec.CandidateName == "" {
			rec.CandidateName = name
		}
		rec.AppliedDate = app.AppliedDate.Format("2006-01-02")
		app.Status = rec.Status

		job, err := s.loadJob(ctx, rec.JobID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, HistoryStats{}, fmt.Errorf("loading referred job: %w", err)
		}
		candidate, perr := profile.LoadProfile(ctx, s.pool, rec.CandidateID)
		if perr != nil && !errors.Is(perr, pgx.ErrNoRows) {
			return nil, HistoryStats{}, fmt.Errorf("loading candidate profile: %w", perr)
		}
		if err == nil && perr == nil {
			rec.JobTitle = job.Title
			rec.CompanyName = job.CompanyName
			rec.MatchScore = MatchScore(job, app, candidate)
		}

		stats.Total++
		switch rec.Status {
		case "pending":
			stats.Pending++
		case "shortlisted":
			stats.Shortlisted++
		case "interview_scheduled":
			stats.Interviews++
		case "hired":
			stats.Hired++
		case "rejected":
			stats.Rejected++
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, HistoryStats{}, err
	}
	return records, stats, nil
}
