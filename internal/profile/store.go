package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"findr/backend/internal/model"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so profile reads compose
// into callers' transactions.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// profileColumns is the users projection the completion calculator and the
// match scorer read. Keep in sync with scanProfile.
const profileColumns = `full_name, email, phone_number, location, date_of_birth,
	nationality, professional_summary, emirates_id, passport_number,
	professional_experience, education, skills, certifications,
	job_preferences, social_links, resume_document`

// LoadProfile reads the typed profile view of a users row. Returns
// pgx.ErrNoRows when the user does not exist.
func LoadProfile(ctx context.Context, q Querier, userID string) (model.Profile, error) {
	row := q.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM users WHERE id = $1`, userID)
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var (
		p                   model.Profile
		expRaw, eduRaw      []byte
		prefsRaw, socialRaw []byte
	)
	err := row.Scan(
		&p.FullName, &p.Email, &p.PhoneNumber, &p.Location, &p.DateOfBirth,
		&p.Nationality, &p.ProfessionalSummary, &p.EmiratesID, &p.PassportNumber,
		&expRaw, &eduRaw, &p.Skills, &p.Certifications,
		&prefsRaw, &socialRaw, &p.ResumeDocument,
	)
	if err != nil {
		return model.Profile{}, err
	}
	if err := json.Unmarshal(expRaw, &p.Experience); err != nil {
		return model.Profile{}, fmt.Errorf("decoding professional_experience: %w", err)
	}
	if err := json.Unmarshal(eduRaw, &p.Education); err != nil {
		return model.Profile{}, fmt.Errorf("decoding education: %w", err)
	}
	if err := json.Unmarshal(prefsRaw, &p.Preferences); err != nil {
		return model.Profile{}, fmt.Errorf("decoding job_preferences: %w", err)
	}
	if err := json.Unmarshal(socialRaw, &p.Social); err != nil {
		return model.Profile{}, fmt.Errorf("decoding social_links: %w", err)
	}
	return p, nil
}
