package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"findr/backend/internal/model"
)

// ErrUserNotFound is returned when the requested user row does not exist.
var ErrUserNotFound = errors.New("user not found")

// Service owns jobseeker profile reads and writes. Every profile write
// re-derives completion, the completeProfile reward bucket and the point
// total in the same transaction.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// userColumns is the full users projection. Keep in sync with scanUser.
const userColumns = `id, email, role, name, login_status, profile_picture,
	full_name, phone_number, location, date_of_birth, nationality,
	emirates_id, passport_number, employment_visa, intro_video,
	resume_document, professional_summary, professional_experience,
	education, skills, certifications, job_preferences, social_links,
	rm_service_active, followed_linkedin, followed_instagram,
	reward_complete_profile, reward_apply_for_jobs, reward_rm_service,
	reward_social_bonus, points, deducted_points, profile_completed,
	total_applications, active_applications, awaiting_feedback,
	applied_jobs, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u                   model.User
		expRaw, eduRaw      []byte
		prefsRaw, socialRaw []byte
		appliedRaw          []byte
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Role, &u.Name, &u.LoginStatus, &u.ProfilePicture,
		&u.Profile.FullName, &u.Profile.PhoneNumber, &u.Profile.Location,
		&u.Profile.DateOfBirth, &u.Profile.Nationality,
		&u.Profile.EmiratesID, &u.Profile.PassportNumber,
		&u.EmploymentVisa, &u.IntroVideo,
		&u.Profile.ResumeDocument, &u.Profile.ProfessionalSummary, &expRaw,
		&eduRaw, &u.Profile.Skills, &u.Profile.Certifications, &prefsRaw, &socialRaw,
		&u.RMServiceActive, &u.FollowedLinkedIn, &u.FollowedInstagram,
		&u.Rewards.CompleteProfile, &u.Rewards.ApplyForJobs, &u.Rewards.RMService,
		&u.Rewards.SocialMediaBonus, &u.Points, &u.DeductedPoints, &u.ProfileCompleted,
		&u.Counters.TotalApplications, &u.Counters.ActiveApplications, &u.Counters.AwaitingFeedback,
		&appliedRaw, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Profile.Email = u.Email
	if err := json.Unmarshal(expRaw, &u.Profile.Experience); err != nil {
		return nil, fmt.Errorf("decoding professional_experience: %w", err)
	}
	if err := json.Unmarshal(eduRaw, &u.Profile.Education); err != nil {
		return nil, fmt.Errorf("decoding education: %w", err)
	}
	if err := json.Unmarshal(prefsRaw, &u.Profile.Preferences); err != nil {
		return nil, fmt.Errorf("decoding job_preferences: %w", err)
	}
	if err := json.Unmarshal(socialRaw, &u.Profile.Social); err != nil {
		return nil, fmt.Errorf("decoding social_links: %w", err)
	}
	if err := json.Unmarshal(appliedRaw, &u.AppliedJobs); err != nil {
		return nil, fmt.Errorf("decoding applied_jobs: %w", err)
	}
	return &u, nil
}

// Details is the jobseeker self-view: the account row plus the derived
// completion state.
type Details struct {
	User       *model.User `json:"user"`
	Completion Completion  `json:"completion"`
}

// Details returns the user row together with its completion state. The
// awaiting-feedback counter is re-derived from live applications on every
// read so a drifted counter self-heals.
func (s *Service) Details(ctx context.Context, userID string) (*Details, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET awaiting_feedback = (
			SELECT COUNT(*) FROM applications
			WHERE applicant_id = users.id
			  AND viewed_by_employer = true
			  AND status <> 'withdrawn'
		)
		WHERE id = $1
		RETURNING `+userColumns, userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return &Details{User: u, Completion: Evaluate(u.Profile)}, nil
}

// UpdateInput carries a partial profile update. Nil fields are left
// untouched; empty non-nil slices clear their column.
type UpdateInput struct {
	Name                *string                 `json:"name"`
	ProfilePicture      *string                 `json:"profilePicture"`
	FullName            *string                 `json:"fullName"`
	PhoneNumber         *string                 `json:"phoneNumber"`
	Location            *string                 `json:"location"`
	DateOfBirth         *time.Time              `json:"dateOfBirth"`
	Nationality         *string                 `json:"nationality"`
	EmiratesID          *string                 `json:"emiratesId"`
	PassportNumber      *string                 `json:"passportNumber"`
	EmploymentVisa      *string                 `json:"employmentVisa"`
	IntroVideo          *string                 `json:"introVideo"`
	ResumeDocument      *string                 `json:"resumeDocument"`
	ProfessionalSummary *string                 `json:"professionalSummary"`
	Experience          []model.ExperienceEntry `json:"professionalExperience"`
	Education           []model.EducationEntry  `json:"education"`
	Skills              []string                `json:"skills"`
	Certifications      []string                `json:"certifications"`
	Preferences         *model.JobPreferences   `json:"jobPreferences"`
	Social              *model.SocialLinks      `json:"socialLinks"`
}

// jsonbArg marshals v for a ::jsonb parameter, or passes NULL through so the
// COALESCE in the update keeps the stored value.
func jsonbArg(v any, set bool) (any, error) {
	if !set {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Update applies a partial profile update, then rewrites the completeProfile
// reward bucket and the point total from the new completion percentage, all
// in one transaction.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*Details, error) {
	expArg, err := jsonbArg(in.Experience, in.Experience != nil)
	if err != nil {
		return nil, fmt.Errorf("encoding professional_experience: %w", err)
	}
	eduArg, err := jsonbArg(in.Education, in.Education != nil)
	if err != nil {
		return nil, fmt.Errorf("encoding education: %w", err)
	}
	prefsArg, err := jsonbArg(in.Preferences, in.Preferences != nil)
	if err != nil {
		return nil, fmt.Errorf("encoding job_preferences: %w", err)
	}
	socialArg, err := jsonbArg(in.Social, in.Social != nil)
	if err != nil {
		return nil, fmt.Errorf("encoding social_links: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning profile update: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE users SET
			name                    = COALESCE($2,  name),
			profile_picture         = COALESCE($3,  profile_picture),
			full_name               = COALESCE($4,  full_name),
			phone_number            = COALESCE($5,  phone_number),
			location                = COALESCE($6,  location),
			date_of_birth           = COALESCE($7::date, date_of_birth),
			nationality             = COALESCE($8,  nationality),
			emirates_id             = COALESCE($9,  emirates_id),
			passport_number         = COALESCE($10, passport_number),
			employment_visa         = COALESCE($11, employment_visa),
			intro_video             = COALESCE($12, intro_video),
			resume_document         = COALESCE($13, resume_document),
			professional_summary    = COALESCE($14, professional_summary),
			professional_experience = COALESCE($15::jsonb, professional_experience),
			education               = COALESCE($16::jsonb, education),
			skills                  = COALESCE($17::text[], skills),
			certifications          = COALESCE($18::text[], certifications),
			job_preferences         = COALESCE($19::jsonb, job_preferences),
			social_links            = COALESCE($20::jsonb, social_links),
			updated_at              = NOW()
		WHERE id = $1
		RETURNING `+profileColumns,
		userID, in.Name, in.ProfilePicture, in.FullName, in.PhoneNumber,
		in.Location, in.DateOfBirth, in.Nationality, in.EmiratesID,
		in.PassportNumber, in.EmploymentVisa, in.IntroVideo, in.ResumeDocument,
		in.ProfessionalSummary, expArg, eduArg, in.Skills, in.Certifications,
		prefsArg, socialArg)

	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	completion := Evaluate(p)
	bucket := CompletionPoints(completion.Percentage)

	row = tx.QueryRow(ctx, `
		UPDATE users SET
			reward_complete_profile = $2,
			profile_completed       = $3,
			points = $2 + reward_apply_for_jobs + reward_rm_service + reward_social_bonus
		WHERE id = $1
		RETURNING `+userColumns,
		userID, bucket, completion.Percentage)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("rewriting completion reward: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing profile update: %w", err)
	}
	return &Details{User: u, Completion: completion}, nil
}

// Eligibility is the application-gate check result.
type Eligibility struct {
	CanApply   bool       `json:"canApply"`
	HasResume  bool       `json:"hasResume"`
	Completion Completion `json:"completion"`
}

// Eligibility evaluates the job-application gate for userID.
func (s *Service) Eligibility(ctx context.Context, userID string) (Eligibility, error) {
	p, err := LoadProfile(ctx, s.pool, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Eligibility{}, ErrUserNotFound
	}
	if err != nil {
		return Eligibility{}, err
	}
	return Eligibility{
		CanApply:   CanApply(p),
		HasResume:  HasResume(p),
		Completion: Evaluate(p),
	}, nil
}
