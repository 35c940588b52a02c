package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"findr/backend/internal/model"
)

// ErrEmployerNotFound is returned when the employer row does not exist.
var ErrEmployerNotFound = errors.New("employer not found")

const employerColumns = `id, email, name, login_status, company_name,
	company_location, company_description, website, industry,
	created_at, updated_at`

func scanEmployer(row pgx.Row) (*model.Employer, error) {
	var e model.Employer
	err := row.Scan(
		&e.ID, &e.Email, &e.Name, &e.LoginStatus, &e.CompanyName,
		&e.CompanyLocation, &e.CompanyDescription, &e.Website, &e.Industry,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EmployerProfile returns the employer's account row.
func (s *Service) EmployerProfile(ctx context.Context, employerID string) (*model.Employer, error) {
	return scanEmployer(s.pool.QueryRow(ctx,
		`SELECT `+employerColumns+` FROM employers WHERE id = $1`, employerID))
}

// EmployerProfileInput is a partial company-profile update. Nil fields keep
// their stored values.
type EmployerProfileInput struct {
	Name               *string `json:"name"`
	CompanyName        *string `json:"companyName"`
	CompanyLocation    *string `json:"companyLocation"`
	CompanyDescription *string `json:"companyDescription"`
	Website            *string `json:"website"`
	Industry           *string `json:"industry"`
}

// UpdateEmployerProfile applies a partial company-profile update. A changed
// company name does not rewrite company_name on existing jobs; postings keep
// the name they were published under.
func (s *Service) UpdateEmployerProfile(ctx context.Context, employerID string, in EmployerProfileInput) (*model.Employer, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE employers SET
			name                = COALESCE($2, name),
			company_name        = COALESCE($3, company_name),
			company_location    = COALESCE($4, company_location),
			company_description = COALESCE($5, company_description),
			website             = COALESCE($6, website),
			industry            = COALESCE($7, industry),
			updated_at          = NOW()
		WHERE id = $1
		RETURNING `+employerColumns,
		employerID, in.Name, in.CompanyName, in.CompanyLocation,
		in.CompanyDescription, in.Website, in.Industry)
	e, err := scanEmployer(row)
	if err != nil {
		if errors.Is(err, ErrEmployerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("updating employer profile: %w", err)
	}
	return e, nil
}
