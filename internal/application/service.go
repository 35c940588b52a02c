package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"findr/backend/internal/model"
	"findr/backend/internal/notify"
	"findr/backend/internal/profile"
	"findr/backend/internal/rewards"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobClosed         = errors.New("job is no longer accepting applications")
	ErrAlreadyApplied    = errors.New("you have already applied for this job")
	ErrProfileIncomplete = errors.New("complete at least 80% of your profile and upload a resume before applying")
	ErrNotFound          = errors.New("application not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCannotWithdraw    = errors.New("application cannot be withdrawn")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)

// Service implements the application lifecycle against PostgreSQL.
type Service struct {
	pool     *pgxpool.Pool
	notifier notify.Dispatcher
}

func NewService(pool *pgxpool.Pool, notifier notify.Dispatcher) *Service {
	return &Service{pool: pool, notifier: notifier}
}

// applicationColumns is the full applications projection. Keep in sync with
// scanApplication.
const applicationColumns = `id, job_id, applicant_id, employer_id, status,
	expected_salary_min, expected_salary_max, availability, cover_letter,
	resume_url, referred_by, employer_notes, viewed_by_employer, viewed_date,
	interview_date, interview_mode, rating, feedback, applied_date, updated_at`

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(
		&a.ID, &a.JobID, &a.ApplicantID, &a.EmployerID, &a.Status,
		&a.ExpectedSalary.Min, &a.ExpectedSalary.Max, &a.Availability, &a.CoverLetter,
		&a.ResumeURL, &a.ReferredBy, &a.EmployerNotes, &a.ViewedByEmployer, &a.ViewedDate,
		&a.InterviewDate, &a.InterviewMode, &a.Rating, &a.Feedback, &a.AppliedDate, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectApplications(rows pgx.Rows) ([]model.Application, error) {
	defer rows.Close()
	var out []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Application{}
	}
	return out, nil
}

// jobSummary is the slice of a job row the create path needs.
type jobSummary struct {
	ID            string
	EmployerID    string
	Title         string
	CompanyName   string
	Status        string
	EmployerEmail string
}

func (s *Service) loadJobSummary(ctx context.Context, jobID string) (jobSummary, error) {
	var j jobSummary
	err := s.pool.QueryRow(ctx, `
		SELECT j.id, j.employer_id, j.title, j.company_name, j.status, e.email
		FROM jobs j JOIN employers e ON e.id = j.employer_id
		WHERE j.id = $1`, jobID).
		Scan(&j.ID, &j.EmployerID, &j.Title, &j.CompanyName, &j.Status, &j.EmployerEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return jobSummary{}, ErrJobNotFound
	}
	if err != nil {
		return jobSummary{}, fmt.Errorf("loading job: %w", err)
	}
	return j, nil
}

// CreateInput is a direct application by the authenticated jobseeker.
type CreateInput struct {
	JobID          string            `json:"jobId"`
	ExpectedSalary model.SalaryRange `json:"expectedSalary"`
	Availability   string            `json:"availability"`
	CoverLetter    string            `json:"coverLetter"`
	ResumeURL      string            `json:"resumeUrl"`
}

// Create files an application. The applicant must clear the profile gate and
// must not already hold an application for the job; the insert, the history
// append, the counters and the apply reward commit atomically.
func (s *Service) Create(ctx context.Context, applicantID string, in CreateInput) (*model.Application, error) {
	job, err := s.loadJobSummary(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != "active" {
		return nil, ErrJobClosed
	}

	p, err := profile.LoadProfile(ctx, s.pool, applicantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading applicant profile: %w", err)
	}
	if !profile.CanApply(p) {
		return nil, ErrProfileIncomplete
	}
	if in.ResumeURL == "" {
		in.ResumeURL = p.ResumeDocument
	}

	app, err := s.insertApplication(ctx, insertParams{
		JobID:          job.ID,
		ApplicantID:    applicantID,
		EmployerID:     job.EmployerID,
		ExpectedSalary: in.ExpectedSalary,
		Availability:   in.Availability,
		CoverLetter:    in.CoverLetter,
		ResumeURL:      in.ResumeURL,
		JobTitle:       job.Title,
		CompanyName:    job.CompanyName,
		AwardPoints:    true,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventApplicationConfirmation,
		Recipient: p.Email,
		Params:    map[string]string{"jobTitle": job.Title, "company": job.CompanyName},
	})
	s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventNewApplication,
		Recipient: job.EmployerEmail,
		Params:    map[string]string{"jobTitle": job.Title, "applicant": p.FullName},
	})
	return app, nil
}

type insertParams struct {
	JobID          string
	ApplicantID    string
	EmployerID     string
	ExpectedSalary model.SalaryRange
	Availability   string
	CoverLetter    string
	ResumeURL      string
	ReferredBy     *string
	JobTitle       string
	CompanyName    string
	AwardPoints    bool
}

// insertApplication inserts the row and applies the applicant-side effects in
// one transaction. The unique (job_id, applicant_id) constraint turns
// duplicate submissions into ErrAlreadyApplied.
func (s *Service) insertApplication(ctx context.Context, p insertParams) (*model.Application, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning application insert: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO applications (
			id, job_id, applicant_id, employer_id,
			expected_salary_min, expected_salary_max,
			availability, cover_letter, resume_url, referred_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT applications_job_applicant_key DO NOTHING
		RETURNING `+applicationColumns,
		uuid.NewString(), p.JobID, p.ApplicantID, p.EmployerID,
		p.ExpectedSalary.Min, p.ExpectedSalary.Max,
		p.Availability, p.CoverLetter, p.ResumeURL, p.ReferredBy)

	app, err := scanApplication(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAlreadyApplied
	}
	if err != nil {
		return nil, fmt.Errorf("inserting application: %w", err)
	}

	entry, err := json.Marshal([]model.AppliedJob{{
		JobID:   p.JobID,
		Role:    p.JobTitle,
		Company: p.CompanyName,
		Date:    app.AppliedDate,
	}})
	if err != nil {
		return nil, fmt.Errorf("encoding history entry: %w", err)
	}

	award := 0
	if p.AwardPoints {
		award = rewards.PointsPerApplication
	}
	_, err = tx.Exec(ctx, `
		UPDATE users SET
			total_applications    = total_applications + 1,
			active_applications   = active_applications + 1,
			applied_jobs          = applied_jobs || $2::jsonb,
			reward_apply_for_jobs = reward_apply_for_jobs + $3,
			points                = points + $3,
			updated_at            = NOW()
		WHERE id = $1`,
		p.ApplicantID, entry, award)
	if err != nil {
		return nil, fmt.Errorf("updating applicant counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing application insert: %w", err)
	}
	return app, nil
}

// Get returns one application, scoped to the caller. Employers reading an
// application for the first time mark it viewed and bump the applicant's
// awaiting-feedback counter; the guard on viewed_by_employer keeps concurrent
// first reads from double counting.
func (s *Service) Get(ctx context.Context, caller, role, appID string) (*model.Application, error) {
	owner := "applicant_id"
	if role == "employer" {
		owner = "employer_id"
	}
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND `+owner+` = $2`,
		appID, caller))
	if err != nil {
		return nil, err
	}

	if role == "employer" && !app.ViewedByEmployer {
		tag, err := s.pool.Exec(ctx, `
			UPDATE applications
			SET viewed_by_employer = true, viewed_date = NOW(), updated_at = NOW()
			WHERE id = $1 AND viewed_by_employer = false`, appID)
		if err != nil {
			return nil, fmt.Errorf("marking application viewed: %w", err)
		}
		if tag.RowsAffected() == 1 {
			now := time.Now()
			app.ViewedByEmployer = true
			app.ViewedDate = &now
			if _, err := s.pool.Exec(ctx, `
				UPDATE users SET awaiting_feedback = awaiting_feedback + 1
				WHERE id = $1`, app.ApplicantID); err != nil {
				return nil, fmt.Errorf("updating awaiting feedback: %w", err)
			}
		}
	}
	return app, nil
}

// StatusUpdateInput is an employer decision on an application.
type StatusUpdateInput struct {
	Status        string     `json:"status"`
	Notes         *string    `json:"notes"`
	InterviewDate *time.Time `json:"interviewDate"`
	InterviewMode *string    `json:"interviewMode"`
}

// UpdateStatus moves an application through the pipeline. The row is locked
// for the duration so concurrent decisions serialize; the losing update sees
// the new state and fails validation instead of clobbering it.
func (s *Service) UpdateStatus(ctx context.Context, employerID, appID string, in StatusUpdateInput) (*model.Application, error) {
	to, err := ParseStatus(in.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning status update: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		current     string
		viewed      bool
		applicantID string
	)
	err = tx.QueryRow(ctx, `
		SELECT status, viewed_by_employer, applicant_id
		FROM applications
		WHERE id = $1 AND employer_id = $2
		FOR UPDATE`, appID, employerID).Scan(&current, &viewed, &applicantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading application: %w", err)
	}

	from := Status(current)
	if !EmployerTransitionAllowed(from, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	// Deciding on an application counts as viewing it.
	firstView := !viewed

	row := tx.QueryRow(ctx, `
		UPDATE applications SET
			status             = $2,
			employer_notes     = COALESCE($3, employer_notes),
			interview_date     = COALESCE($4, interview_date),
			interview_mode     = COALESCE($5, interview_mode),
			viewed_by_employer = true,
			viewed_date        = COALESCE(viewed_date, NOW()),
			updated_at         = NOW()
		WHERE id = $1
		RETURNING `+applicationColumns,
		appID, string(to), in.Notes, in.InterviewDate, in.InterviewMode)
	app, err := scanApplication(row)
	if err != nil {
		return nil, fmt.Errorf("updating application status: %w", err)
	}

	if firstView {
		if _, err := tx.Exec(ctx, `
			UPDATE users SET awaiting_feedback = awaiting_feedback + 1
			WHERE id = $1`, applicantID); err != nil {
			return nil, fmt.Errorf("updating awaiting feedback: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	var email, jobTitle string
	if err := s.pool.QueryRow(ctx, `
		SELECT u.email, j.title
		FROM applications a
		JOIN users u ON u.id = a.applicant_id
		JOIN jobs j ON j.id = a.job_id
		WHERE a.id = $1`, appID).Scan(&email, &jobTitle); err == nil {
		s.notifier.Dispatch(ctx, notify.Event{
			Type:      notify.EventApplicationStatusUpdate,
			Recipient: email,
			Params:    map[string]string{"jobTitle": jobTitle, "status": string(to)},
		})
	}
	return app, nil
}

// Withdraw retires an application at the applicant's request. Ownership by a
// different applicant reads as not-found so application ids cannot be
// enumerated.
func (s *Service) Withdraw(ctx context.Context, applicantID, appID string) (*model.Application, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning withdrawal: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		owner   string
		current string
		viewed  bool
	)
	err = tx.QueryRow(ctx, `
		SELECT applicant_id, status, viewed_by_employer
		FROM applications WHERE id = $1
		FOR UPDATE`, appID).Scan(&owner, &current, &viewed)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && owner != applicantID) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading application: %w", err)
	}

	from := Status(current)
	if !CanWithdraw(from) {
		return nil, fmt.Errorf("%w: application is already %s", ErrCannotWithdraw, from)
	}

	row := tx.QueryRow(ctx, `
		UPDATE applications SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+applicationColumns,
		appID, string(StatusWithdrawn))
	app, err := scanApplication(row)
	if err != nil {
		return nil, fmt.Errorf("withdrawing application: %w", err)
	}

	awaitingDelta := 0
	if viewed {
		awaitingDelta = 1
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET
			active_applications = GREATEST(active_applications - 1, 0),
			awaiting_feedback   = GREATEST(awaiting_feedback - $2, 0),
			updated_at          = NOW()
		WHERE id = $1`, applicantID, awaitingDelta); err != nil {
		return nil, fmt.Errorf("updating applicant counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing withdrawal: %w", err)
	}
	return app, nil
}

// Rate records the employer's candidate rating and feedback.
func (s *Service) Rate(ctx context.Context, employerID, appID string, rating int, feedback string) (*model.Application, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE applications SET rating = $3, feedback = $4, updated_at = NOW()
		WHERE id = $1 AND employer_id = $2
		RETURNING `+applicationColumns,
		appID, employerID, rating, feedback)
	return scanApplication(row)
}

// ListOptions filter and paginate application lists.
type ListOptions struct {
	Status string
	JobID  string
	Page   int
	Limit  int
}

func (o *ListOptions) normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 10
	}
	if o.Limit > 50 {
		o.Limit = 50
	}
}

func (o ListOptions) offset() int { return (o.Page - 1) * o.Limit }

// ListForEmployer returns the employer's applications, newest first.
// Withdrawn applications never appear on the employer side.
func (s *Service) ListForEmployer(ctx context.Context, employerID string, opts ListOptions) ([]model.Application, int, error) {
	opts.normalize()

	where := `WHERE employer_id = $1 AND status <> '` + string(StatusWithdrawn) + `'`
	args := []any{employerID}
	if opts.Status != "" {
		st, err := ParseStatus(opts.Status)
		if err != nil {
			return nil, 0, err
		}
		args = append(args, string(st))
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if opts.JobID != "" {
		args = append(args, opts.JobID)
		where += ` AND job_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting applications: %w", err)
	}

	args = append(args, opts.Limit, opts.offset())
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications `+where+
			` ORDER BY applied_date DESC LIMIT $`+strconv.Itoa(len(args)-1)+
			` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing applications: %w", err)
	}
	apps, err := collectApplications(rows)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Stats summarize an applicant's applications by status.
type Stats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Shortlisted int `json:"shortlisted"`
	Interviews  int `json:"interviews"`
	Hired       int `json:"hired"`
	Rejected    int `json:"rejected"`
	Withdrawn   int `json:"withdrawn"`
}

// ListForApplicant returns the applicant's applications, newest first, with
// per-status counts. Unlike the employer view this includes withdrawn rows.
func (s *Service) ListForApplicant(ctx context.Context, applicantID string, opts ListOptions) ([]model.Application, Stats, error) {
	opts.normalize()

	var stats Stats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'shortlisted'),
			COUNT(*) FILTER (WHERE status = 'interview_scheduled'),
			COUNT(*) FILTER (WHERE status = 'hired'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'withdrawn')
		FROM applications WHERE applicant_id = $1`, applicantID).
		Scan(&stats.Total, &stats.Pending, &stats.Shortlisted, &stats.Interviews,
			&stats.Hired, &stats.Rejected, &stats.Withdrawn)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("counting applications: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		WHERE applicant_id = $1
		ORDER BY applied_date DESC LIMIT $2 OFFSET $3`,
		applicantID, opts.Limit, opts.offset())
	if err != nil {
		return nil, Stats{}, fmt.Errorf("listing applications: %w", err)
	}
	apps, err := collectApplications(rows)
	if err != nil {
		return nil, Stats{}, err
	}
	return apps, stats, nil
}

// ListForJob returns the non-withdrawn applications for one of the
// employer's jobs.
func (s *Service) ListForJob(ctx context.Context, employerID, jobID string) ([]model.Application, error) {
	var owned bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1 AND employer_id = $2)`,
		jobID, employerID).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("checking job ownership: %w", err)
	}
	if !owned {
		return nil, ErrJobNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		WHERE job_id = $1 AND status <> $2
		ORDER BY applied_date DESC`,
		jobID, string(StatusWithdrawn))
	if err != nil {
		return nil, fmt.Errorf("listing job applications: %w", err)
	}
	return collectApplications(rows)
}

// Interviews returns the caller's scheduled interviews, soonest first.
func (s *Service) Interviews(ctx context.Context, caller, role string) ([]model.Application, error) {
	owner := "applicant_id"
	if role == "employer" {
		owner = "employer_id"
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		WHERE `+owner+` = $1 AND status = $2
		ORDER BY interview_date ASC NULLS LAST`,
		caller, string(StatusInterviewScheduled))
	if err != nil {
		return nil, fmt.Errorf("listing interviews: %w", err)
	}
	return collectApplications(rows)
}

// DashboardMetrics is the employer overview.
type DashboardMetrics struct {
	ActiveJobs        int `json:"activeJobs"`
	TotalApplications int `json:"totalApplications"`
	Pending           int `json:"pending"`
	Shortlisted       int `json:"shortlisted"`
	Interviews        int `json:"interviews"`
	Hired             int `json:"hired"`
	Rejected          int `json:"rejected"`
	Unviewed          int `json:"unviewed"`
}

// Dashboard aggregates the employer's jobs and applications. Withdrawn
// applications are excluded throughout.
func (s *Service) Dashboard(ctx context.Context, employerID string) (DashboardMetrics, error) {
	var m DashboardMetrics
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status <> 'withdrawn'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'shortlisted'),
			COUNT(*) FILTER (WHERE status = 'interview_scheduled'),
			COUNT(*) FILTER (WHERE status = 'hired'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE viewed_by_employer = false AND status <> 'withdrawn')
		FROM applications WHERE employer_id = $1`, employerID).
		Scan(&m.TotalApplications, &m.Pending, &m.Shortlisted, &m.Interviews,
			&m.Hired, &m.Rejected, &m.Unviewed)
	if err != nil {
		return DashboardMetrics{}, fmt.Errorf("aggregating applications: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE employer_id = $1 AND status = 'active'`,
		employerID).Scan(&m.ActiveJobs)
	if err != nil {
		return DashboardMetrics{}, fmt.Errorf("counting active jobs: %w", err)
	}
	return m, nil
}
