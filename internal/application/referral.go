package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"findr/backend/internal/model"
	"findr/backend/internal/notify"
)

// ErrSelfReferral rejects referring yourself for a job.
var ErrSelfReferral = errors.New("you cannot refer yourself")

// ReferralInput refers an external candidate for a job. ExpectedSalary is a
// single figure; the stored application carries a band around it.
type ReferralInput struct {
	JobID          string `json:"jobId"`
	CandidateName  string `json:"candidateName"`
	CandidateEmail string `json:"candidateEmail"`
	CandidatePhone string `json:"candidatePhone"`
	ExpectedSalary int    `json:"expectedSalary"`
}

// ReferralResult reports the created application and whether a candidate
// account had to be provisioned.
type ReferralResult struct {
	Application    *model.Application `json:"application"`
	AccountCreated bool               `json:"accountCreated"`
}

// salaryBandSpread widens a referred candidate's single expected-salary
// figure into a stored min/max band.
const salaryBandSpread = 2000

func tempPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CreateReferral files an application on behalf of a referred candidate,
// provisioning a jobseeker account when the email is new. Referred
// applications skip the profile gate and earn the candidate no apply points;
// the duplicate-application rule still holds.
func (s *Service) CreateReferral(ctx context.Context, referrerID string, in ReferralInput) (*ReferralResult, error) {
	job, err := s.loadJobSummary(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != "active" {
		return nil, ErrJobClosed
	}

	email := strings.ToLower(strings.TrimSpace(in.CandidateEmail))
	if email == "" {
		return nil, fmt.Errorf("candidate email is required")
	}

	var (
		candidateID string
		created     bool
		password    string
	)
	err = s.pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`, email).Scan(&candidateID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		password, err = tempPassword()
		if err != nil {
			return nil, fmt.Errorf("generating temporary password: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing temporary password: %w", err)
		}
		candidateID = uuid.NewString()
		_, err = s.pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, full_name, phone_number)
			VALUES ($1, $2, $3, $4, $4, $5)`,
			candidateID, email, string(hash), in.CandidateName, in.CandidatePhone)
		if err != nil {
			return nil, fmt.Errorf("provisioning candidate account: %w", err)
		}
		created = true
	case err != nil:
		return nil, fmt.Errorf("looking up candidate: %w", err)
	}
	if candidateID == referrerID {
		return nil, ErrSelfReferral
	}

	band := model.SalaryRange{}
	if in.ExpectedSalary > 0 {
		band.Min = in.ExpectedSalary - salaryBandSpread
		if band.Min < 0 {
			band.Min = 0
		}
		band.Max = in.ExpectedSalary + salaryBandSpread
	}

	app, err := s.insertApplication(ctx, insertParams{
		JobID:          job.ID,
		ApplicantID:    candidateID,
		EmployerID:     job.EmployerID,
		ExpectedSalary: band,
		ReferredBy:     &referrerID,
		JobTitle:       job.Title,
		CompanyName:    job.CompanyName,
		AwardPoints:    false,
	})
	if err != nil {
		return nil, err
	}

	params := map[string]string{"jobTitle": job.Title, "company": job.CompanyName}
	if created {
		params["tempPassword"] = password
	}
	s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventReferralInvite,
		Recipient: email,
		Params:    params,
	})
	s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventNewApplication,
		Recipient: job.EmployerEmail,
		Params:    map[string]string{"jobTitle": job.Title, "applicant": in.CandidateName},
	})
	return &ReferralResult{Application: app, AccountCreated: created}, nil
}
