// Package job implements job postings: employer CRUD, the public listing
// with its view counter, and profile-based recommendations for jobseekers.
package job

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"findr/backend/internal/model"
	"findr/backend/internal/profile"
)

var (
	ErrNotFound      = errors.New("job not found")
	ErrTitleRequired = errors.New("job title is required")
)

// Service implements job postings against PostgreSQL.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// jobColumns is the full jobs projection. Keep in sync with scanJob.
const jobColumns = `id, employer_id, title, company_name, description,
	requirements, skills, location, job_type, experience_level,
	salary_min, salary_max, status, views, created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	err := row.Scan(
		&j.ID, &j.EmployerID, &j.Title, &j.CompanyName, &j.Description,
		&j.Requirements, &j.Skills, &j.Location, &j.JobType, &j.ExperienceLevel,
		&j.Salary.Min, &j.Salary.Max, &j.Status, &j.Views, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]model.Job, error) {
	defer rows.Close()
	out := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// CreateInput is a new posting. The company name is taken from the employer
// account, not the request.
type CreateInput struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Requirements    []string          `json:"requirements"`
	Skills          []string          `json:"skills"`
	Location        string            `json:"location"`
	JobType         string            `json:"jobType"`
	ExperienceLevel string            `json:"experienceLevel"`
	Salary          model.SalaryRange `json:"salary"`
}

// Create publishes a new active job for the employer.
func (s *Service) Create(ctx context.Context, employerID string, in CreateInput) (*model.Job, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	var companyName string
	err := s.pool.QueryRow(ctx,
		`SELECT company_name FROM employers WHERE id = $1`, employerID).Scan(&companyName)
	if err != nil {
		return nil, fmt.Errorf("loading employer: %w", err)
	}
	if in.Requirements == nil {
		in.Requirements = []string{}
	}
	if in.Skills == nil {
		in.Skills = []string{}
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO jobs (
			id, employer_id, title, company_name, description, requirements,
			skills, location, job_type, experience_level, salary_min, salary_max
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+jobColumns,
		uuid.NewString(), employerID, in.Title, companyName, in.Description,
		in.Requirements, in.Skills, in.Location, in.JobType, in.ExperienceLevel,
		in.Salary.Min, in.Salary.Max)
	return scanJob(row)
}

// UpdateInput is a partial edit of an existing posting.
type UpdateInput struct {
	Title           *string            `json:"title"`
	Description     *string            `json:"description"`
	Requirements    []string           `json:"requirements"`
	Skills          []string           `json:"skills"`
	Location        *string            `json:"location"`
	JobType         *string            `json:"jobType"`
	ExperienceLevel *string            `json:"experienceLevel"`
	Salary          *model.SalaryRange `json:"salary"`
}

// Update edits one of the employer's jobs. Nil fields keep their stored
// values.
func (s *Service) Update(ctx context.Context, employerID, jobID string, in UpdateInput) (*model.Job, error) {
	var salaryMin, salaryMax *int
	if in.Salary != nil {
		salaryMin, salaryMax = &in.Salary.Min, &in.Salary.Max
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE jobs SET
			title            = COALESCE($3, title),
			description      = COALESCE($4, description),
			requirements     = COALESCE($5::text[], requirements),
			skills           = COALESCE($6::text[], skills),
			location         = COALESCE($7, location),
			job_type         = COALESCE($8, job_type),
			experience_level = COALESCE($9, experience_level),
			salary_min       = COALESCE($10, salary_min),
			salary_max       = COALESCE($11, salary_max),
			updated_at       = NOW()
		WHERE id = $1 AND employer_id = $2
		RETURNING `+jobColumns,
		jobID, employerID, in.Title, in.Description, in.Requirements, in.Skills,
		in.Location, in.JobType, in.ExperienceLevel, salaryMin, salaryMax)
	return scanJob(row)
}

// visibleTo reports whether a job in the given status may be read by
// viewerID. Closed jobs stay visible to their owner only; paused jobs remain
// public, they just stop accepting applications and counting views.
func visibleTo(status, employerID, viewerID string) bool {
	return status != "closed" || viewerID == employerID
}

// Get returns one job. Reads by anyone other than the posting employer
// count a view on active jobs; the increment rides on the status guard so
// paused and closed jobs stop accumulating views.
func (s *Service) Get(ctx context.Context, jobID, viewerID string) (*model.Job, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID))
	if err != nil {
		return nil, err
	}
	if !visibleTo(job.Status, job.EmployerID, viewerID) {
		return nil, ErrNotFound
	}
	if viewerID != job.EmployerID {
		tag, err := s.pool.Exec(ctx,
			`UPDATE jobs SET views = views + 1 WHERE id = $1 AND status = 'active'`, jobID)
		if err != nil {
			return nil, fmt.Errorf("counting job view: %w", err)
		}
		if tag.RowsAffected() == 1 {
			job.Views++
		}
	}
	return job, nil
}

// SetStatus pauses, closes or reopens one of the employer's jobs. Only
// active jobs accept applications or accumulate views.
func (s *Service) SetStatus(ctx context.Context, employerID, jobID, status string) (*model.Job, error) {
	if status != "active" && status != "paused" && status != "closed" {
		return nil, fmt.Errorf("unknown job status %q", status)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE jobs SET status = $3, updated_at = NOW()
		WHERE id = $1 AND employer_id = $2
		RETURNING `+jobColumns,
		jobID, employerID, status)
	return scanJob(row)
}

// ListOptions filter the public job listing.
type ListOptions struct {
	Search          string
	Location        string
	JobType         string
	ExperienceLevel string
	Page            int
	Limit           int
}

func (o *ListOptions) normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
}

// List returns active jobs matching the filters, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]model.Job, int, error) {
	opts.normalize()

	where := `WHERE status = 'active'`
	args := []any{}
	add := func(clause, value string) {
		args = append(args, value)
		where += ` AND ` + clause + ` $` + strconv.Itoa(len(args))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (title ILIKE $` + n + ` OR company_name ILIKE $` + n + ` OR description ILIKE $` + n + `)`
	}
	if opts.Location != "" {
		add(`location ILIKE`, "%"+opts.Location+"%")
	}
	if opts.JobType != "" {
		add(`job_type =`, opts.JobType)
	}
	if opts.ExperienceLevel != "" {
		add(`experience_level =`, opts.ExperienceLevel)
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting jobs: %w", err)
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs `+where+
			` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(len(args)-1)+
			` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// EmployerJob is a posting with its live application count.
type EmployerJob struct {
	model.Job
	ApplicationCount int `json:"applicationCount"`
}

// ListForEmployer returns all of the employer's jobs with non-withdrawn
// application counts, newest first.
func (s *Service) ListForEmployer(ctx context.Context, employerID string) ([]EmployerJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`,
			(SELECT COUNT(*) FROM applications a
			 WHERE a.job_id = jobs.id AND a.status <> 'withdrawn')
		FROM jobs
		WHERE employer_id = $1
		ORDER BY created_at DESC`, employerID)
	if err != nil {
		return nil, fmt.Errorf("listing employer jobs: %w", err)
	}
	defer rows.Close()

	out := []EmployerJob{}
	for rows.Next() {
		var ej EmployerJob
		err := rows.Scan(
			&ej.ID, &ej.EmployerID, &ej.Title, &ej.CompanyName, &ej.Description,
			&ej.Requirements, &ej.Skills, &ej.Location, &ej.JobType, &ej.ExperienceLevel,
			&ej.Salary.Min, &ej.Salary.Max, &ej.Status, &ej.Views, &ej.CreatedAt, &ej.UpdatedAt,
			&ej.ApplicationCount,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, ej)
	}
	return out, rows.Err()
}

// Recommendation is a job scored against the requesting profile.
type Recommendation struct {
	Job   model.Job `json:"job"`
	Score int       `json:"score"`
}

// recommendationPool bounds how many recent jobs are scored per request.
const recommendationPool = 50

// Recommendations scores recent active jobs the user has not applied to and
// returns the best matches, highest score first.
func (s *Service) Recommendations(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	if limit < 1 || limit > recommendationPool {
		limit = 10
	}
	p, err := profile.LoadProfile(ctx, s.pool, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE status = 'active'
		  AND NOT EXISTS (
			SELECT 1 FROM applications a
			WHERE a.job_id = jobs.id AND a.applicant_id = $1
		  )
		ORDER BY created_at DESC
		LIMIT $2`, userID, recommendationPool)
	if err != nil {
		return nil, fmt.Errorf("listing candidate jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	recs := make([]Recommendation, 0, len(jobs))
	for _, j := range jobs {
		recs = append(recs, Recommendation{Job: j, Score: RecommendationScore(j, p, now)})
	}
	sort.SliceStable(recs, func(i, k int) bool { return recs[i].Score > recs[k].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
